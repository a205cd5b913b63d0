package eeg

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/biosynth/internal/model"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestCatalog(t *testing.T) {
	infos := Catalog()
	require.Len(t, infos, 17)

	var normal, abnormal int
	seen := map[string]bool{}
	for _, p := range infos {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Label)
		switch p.Class {
		case model.ClassNormal:
			normal++
		case model.ClassAbnormal:
			abnormal++
		}
		_, err := Lookup(p.ID)
		assert.NoError(t, err, "listed pattern %s must resolve", p.ID)
	}
	assert.Equal(t, 5, normal)
	assert.Equal(t, 12, abnormal)
}

func TestCompose_ShapeAndFinite(t *testing.T) {
	for _, p := range Catalog() {
		for _, dur := range []int{1, 10, 30} {
			for _, fs := range []int{128, 256} {
				t.Run(fmt.Sprintf("%s/%ds/%dHz", p.ID, dur, fs), func(t *testing.T) {
					n := dur * fs
					sig, err := Compose(seeded(uint64(dur*fs)), p.ID, n, fs)
					require.NoError(t, err)
					require.Len(t, sig.Samples, NumChannels)
					assert.Equal(t, Channels, sig.Channels)
					assert.Equal(t, n, sig.Len())
					for ch, x := range sig.Samples {
						require.Len(t, x, n)
						for i, v := range x {
							if math.IsNaN(v) || math.IsInf(v, 0) {
								t.Fatalf("channel %d sample %d is %v", ch, i, v)
							}
						}
					}
				})
			}
		}
	}
}

func TestBandPowers_NonNegative(t *testing.T) {
	for _, p := range Catalog() {
		t.Run(p.ID, func(t *testing.T) {
			sig, err := Compose(seeded(3), p.ID, 10*128, 128)
			require.NoError(t, err)
			bp, err := BandPowers(sig)
			require.NoError(t, err)
			assert.Equal(t, []string{"delta", "theta", "alpha", "beta", "gamma"}, bp.Bands)
			require.Len(t, bp.Power, NumChannels)
			for ch, row := range bp.Power {
				require.Len(t, row, len(Bands))
				for i, v := range row {
					assert.GreaterOrEqual(t, v, 0.0, "channel %d band %s", ch, bp.Bands[i])
				}
			}
		})
	}
}

func TestBandPowers_AlphaDominatesAwake(t *testing.T) {
	sig, err := Compose(seeded(11), "normal_awake", 30*256, 256)
	require.NoError(t, err)
	bp, err := BandPowers(sig)
	require.NoError(t, err)
	for ch, row := range bp.Power {
		assert.Greater(t, row[2], row[1], "alpha above theta on channel %d", ch)
	}
}

func TestBandPowers_ShortSignal(t *testing.T) {
	sig := &model.Signal{Channels: []string{"Fp1"}, SamplingRate: 128, Samples: [][]float64{{1}}}
	bp, err := BandPowers(sig)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, bp.Power[0])
}

func TestCompose_Deterministic(t *testing.T) {
	a, err := Compose(seeded(42), "hypsarrhythmia", 1280, 128)
	require.NoError(t, err)
	b, err := Compose(seeded(42), "hypsarrhythmia", 1280, 128)
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)

	c, err := Compose(seeded(43), "hypsarrhythmia", 1280, 128)
	require.NoError(t, err)
	assert.NotEqual(t, a.Samples, c.Samples)
}

func TestCompose_UnknownPattern(t *testing.T) {
	sig, err := Compose(seeded(1), "no_such_pattern", 128, 128)
	require.Error(t, err)
	assert.Nil(t, sig)
	assert.True(t, errors.Is(err, model.ErrInvalidPattern))
}

func TestCompose_NyquistViolation(t *testing.T) {
	// gamma (30-45 Hz) cannot be designed at 64 Hz
	_, err := Compose(seeded(1), "normal_awake", 640, 64)
	require.Error(t, err)
}

func TestFocalSpikes_FrontalLarger(t *testing.T) {
	g := &gen{rng: seeded(5), n: 2560, fs: 256}
	front, err := focalSpikes(g, 0)
	require.NoError(t, err)
	other, err := focalSpikes(g, 8)
	require.NoError(t, err)
	// overlapping spikes may stack, so only lower bounds are exact
	assert.GreaterOrEqual(t, maxAbs(front), 120.0)
	assert.GreaterOrEqual(t, maxAbs(other), 30.0)
	assert.Less(t, maxAbs(other), 120.0)
}

func TestPeriodicDischarges_OnePerSecond(t *testing.T) {
	g := &gen{rng: seeded(1), n: 5 * 128, fs: 128}
	x, err := periodicDischarges(g, 0)
	require.NoError(t, err)
	for s := range 5 {
		assert.InDelta(t, 100.0, x[s*128], 1e-9, "discharge at second %d", s)
	}
}

func TestAlphaComa_Mixture(t *testing.T) {
	p, err := Lookup("alpha_coma")
	require.NoError(t, err)
	assert.Empty(t, p.components, "alpha band only")
	assert.Equal(t, 5.0, p.noiseStd, "same measurement noise as other abnormal patterns")
	assert.False(t, p.artifacts)
}

func TestFlat_LowAmplitude(t *testing.T) {
	sig, err := Compose(seeded(9), "flat_eeg", 2560, 256)
	require.NoError(t, err)
	for _, x := range sig.Samples {
		assert.Less(t, maxAbs(x), 15.0)
	}
}

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
