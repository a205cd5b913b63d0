// Package ecg composes synthetic single-lead cardiac recordings for a fixed
// catalog of rhythms and extracts heart-rate-variability statistics.
package ecg

import (
	"math"
	"math/rand/v2"
)

// Simulator produces a baseline single-lead recording of n samples at fs Hz.
type Simulator interface {
	Simulate(rng *rand.Rand, heartRate float64, n, fs int) []float64
}

// wave is one Gaussian deflection of the P-QRS-T cycle, positioned relative
// to the R peak. Scaled waves stretch with the square root of the RR interval.
type wave struct {
	offset float64 // seconds from R
	amp    float64
	width  float64 // seconds
	scaled bool
}

var pqrst = []wave{
	{offset: -0.14, amp: 0.12, width: 0.03, scaled: true}, // P
	{offset: -0.02, amp: -0.1, width: 0.01},               // Q
	{offset: 0, amp: 1, width: 0.01},                      // R
	{offset: 0.03, amp: -0.25, width: 0.012},              // S
	{offset: 0.28, amp: 0.3, width: 0.06, scaled: true},   // T
}

// GaussianSim sums P, Q, R, S and T Gaussians per beat. Each beat draws its
// own RR interval from a rate jittered by 1 bpm, and the first beat lands at
// a random phase.
type GaussianSim struct {
	Noise float64
}

// DefaultSimulator is the baseline generator used by NewComposer.
var DefaultSimulator = GaussianSim{Noise: 0.01}

// Simulate returns n samples of a Gaussian-wave rhythm at heartRate bpm.
func (s GaussianSim) Simulate(rng *rand.Rand, heartRate float64, n, fs int) []float64 {
	x := make([]float64, n)
	rate := float64(fs)
	dur := float64(n) / rate

	rr := 60 / heartRate
	for r := -rng.Float64() * rr; r < dur+rr; r += rr {
		s.beat(x, r, rr, rate)
		rr = 60 / math.Max(heartRate+rng.NormFloat64(), 20)
	}
	if s.Noise > 0 {
		for i := range x {
			x[i] += rng.NormFloat64() * s.Noise
		}
	}
	return x
}

func (s GaussianSim) beat(x []float64, r, rr, fs float64) {
	stretch := math.Sqrt(rr)
	for _, w := range pqrst {
		c, width := r+w.offset, w.width
		if w.scaled {
			c = r + w.offset*stretch
			width *= stretch
		}
		lo := max(int(math.Ceil((c-4*width)*fs)), 0)
		hi := min(int(math.Floor((c+4*width)*fs)), len(x)-1)
		for i := lo; i <= hi; i++ {
			z := (float64(i)/fs - c) / width
			x[i] += w.amp * math.Exp(-0.5*z*z)
		}
	}
}
