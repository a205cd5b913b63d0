package dsp

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButterBandpass_RejectsBadBands(t *testing.T) {
	tests := []struct {
		name            string
		low, high, rate float64
	}{
		{"above nyquist", 8, 200, 256},
		{"at nyquist", 30, 32, 64},
		{"zero low", 0, 4, 256},
		{"inverted", 12, 8, 256},
		{"zero rate", 1, 4, 0},
		{"nan edge", math.NaN(), 4, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ButterBandpass(4, tt.low, tt.high, tt.rate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFilterDesign), "expected ErrFilterDesign, got %v", err)
			var fe *FilterDesignError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.high, fe.High)
		})
	}
}

func TestButterBandpass_Response(t *testing.T) {
	bp, err := ButterBandpass(4, 8, 12, 256)
	require.NoError(t, err)
	require.Len(t, bp.Sections, 4)

	assert.InDelta(t, 1.0, bp.Response(10), 0.01, "passband")
	assert.InDelta(t, 1/math.Sqrt2, bp.Response(8), 0.01, "lower edge is -3 dB")
	assert.InDelta(t, 1/math.Sqrt2, bp.Response(12), 0.01, "upper edge is -3 dB")
	assert.Less(t, bp.Response(1), 0.01)
	assert.Less(t, bp.Response(40), 0.01)
}

func TestButterBandpass_OddOrder(t *testing.T) {
	bp, err := ButterBandpass(3, 0.5, 40, 256)
	require.NoError(t, err)
	assert.Len(t, bp.Sections, 3)
	assert.InDelta(t, 1.0, bp.Response(5), 0.02)
}

func TestFiltFilt_ZeroPhase(t *testing.T) {
	const fs, n = 256.0, 2048
	bp, err := ButterBandpass(4, 8, 12, fs)
	require.NoError(t, err)

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 10 * float64(i) / fs)
	}
	y := bp.FiltFilt(x)
	require.Len(t, y, n)

	for i := n / 4; i < 3*n/4; i++ {
		require.InDelta(t, x[i], y[i], 0.05, "sample %d", i)
	}
}

func TestFiltFilt_ShortInputs(t *testing.T) {
	bp, err := ButterBandpass(4, 1, 30, 128)
	require.NoError(t, err)

	assert.Empty(t, bp.FiltFilt(nil))
	assert.Len(t, bp.FiltFilt([]float64{1}), 1)
	for _, v := range bp.FiltFilt([]float64{1, -1, 2, 0, 3}) {
		assert.False(t, math.IsNaN(v))
	}
}

func TestBandLimitedNoise(t *testing.T) {
	const fs, n = 256.0, 256 * 20
	rng := rand.New(rand.NewPCG(1, 2))

	x, err := BandLimitedNoise(rng, 8, 12, n, fs)
	require.NoError(t, err)
	require.Len(t, x, n)

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= n
	assert.InDelta(t, 0, mean, 0.05)

	psd, err := Welch(x, fs, 0)
	require.NoError(t, err)
	in := psd.BandPower(8, 12)
	total := psd.BandPower(0, fs/2)
	assert.Greater(t, in/total, 0.7, "energy concentrated in band")
}

func TestBandLimitedNoise_Deterministic(t *testing.T) {
	a, err := BandLimitedNoise(rand.New(rand.NewPCG(7, 7)), 1, 4, 512, 128)
	require.NoError(t, err)
	b, err := BandLimitedNoise(rand.New(rand.NewPCG(7, 7)), 1, 4, 512, 128)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBandLimitedNoise_Nyquist(t *testing.T) {
	_, err := BandLimitedNoise(rand.New(rand.NewPCG(1, 1)), 30, 45, 100, 64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFilterDesign))
}

func TestWelch_Parseval(t *testing.T) {
	const fs, n = 256.0, 4096
	x := make([]float64, n)
	for i := range x {
		x[i] = 3 * math.Sin(2*math.Pi*32*float64(i)/fs)
	}
	psd, err := Welch(x, fs, 0)
	require.NoError(t, err)
	require.Len(t, psd.Freqs, DefaultSegment/2+1)
	assert.Equal(t, 0.0, psd.Freqs[0])
	assert.Equal(t, fs/2, psd.Freqs[len(psd.Freqs)-1])

	peak := 0
	for k := range psd.Power {
		if psd.Power[k] > psd.Power[peak] {
			peak = k
		}
	}
	assert.InDelta(t, 32.0, psd.Freqs[peak], 1e-9)
	assert.InEpsilon(t, 4.5, psd.BandPower(0, fs/2), 0.02, "integrated power equals variance")
}

func TestWelch_ShortSignal(t *testing.T) {
	_, err := Welch([]float64{1}, 256, 0)
	assert.Error(t, err)

	psd, err := Welch([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8, 0)
	require.NoError(t, err)
	assert.Len(t, psd.Power, 5)
	for _, p := range psd.Power {
		assert.GreaterOrEqual(t, p, 0.0)
	}
}

func TestBandPower_TooFewBins(t *testing.T) {
	s := Spectrum{Freqs: []float64{0, 1, 2}, Power: []float64{1, 1, 1}}
	assert.Equal(t, 0.0, s.BandPower(1.5, 1.9))
	assert.InDelta(t, 2.0, s.BandPower(0, 2), 1e-12)
}
