package dsp

import (
	"math/rand/v2"
	"sync"
)

// NoiseOrder is the Butterworth order used for band-limited noise.
const NoiseOrder = 4

type designKey struct {
	order           int
	low, high, rate float64
}

var designs sync.Map // designKey -> *Bandpass

// CachedBandpass returns a shared design for the given band. Designs are
// immutable once built, so concurrent callers may use the same value.
func CachedBandpass(order int, low, high, fs float64) (*Bandpass, error) {
	key := designKey{order: order, low: low, high: high, rate: fs}
	if v, ok := designs.Load(key); ok {
		return v.(*Bandpass), nil
	}
	bp, err := ButterBandpass(order, low, high, fs)
	if err != nil {
		return nil, err
	}
	v, _ := designs.LoadOrStore(key, bp)
	return v.(*Bandpass), nil
}

// BandLimitedNoise returns n samples of unit-variance Gaussian white noise
// passed zero-phase through a 4th-order Butterworth band-pass [low, high] Hz.
// The RNG is owned by the caller; nothing here touches shared random state.
func BandLimitedNoise(rng *rand.Rand, low, high float64, n int, fs float64) ([]float64, error) {
	bp, err := CachedBandpass(NoiseOrder, low, high, fs)
	if err != nil {
		return nil, err
	}
	white := make([]float64, n)
	for i := range white {
		white[i] = rng.NormFloat64()
	}
	return bp.FiltFilt(white), nil
}
