package ecg

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
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

func detectedBeats(t *testing.T, c *Composer, pattern string, seed uint64) int {
	t.Helper()
	sig, err := c.Compose(seeded(seed), pattern, 30*256, 256)
	require.NoError(t, err)
	peaks, err := c.Detector.Detect(sig.Samples[0], 256)
	require.NoError(t, err)
	return len(peaks)
}

func TestCatalog(t *testing.T) {
	infos := Catalog()
	require.Len(t, infos, 18)
	var normal int
	for _, p := range infos {
		if p.Class == model.ClassNormal {
			normal++
		}
		_, err := Lookup(p.ID)
		assert.NoError(t, err)
	}
	assert.Equal(t, 3, normal)
}

func TestCompose_Length(t *testing.T) {
	c := NewComposer()
	for _, p := range Catalog() {
		for _, tc := range []struct{ n, fs int }{{128, 128}, {10 * 256, 256}, {30 * 128, 128}} {
			sig, err := c.Compose(seeded(1), p.ID, tc.n, tc.fs)
			require.NoError(t, err, p.ID)
			require.Len(t, sig.Samples, 1)
			assert.Len(t, sig.Samples[0], tc.n, p.ID)
			assert.Equal(t, []string{Lead}, sig.Channels)
			for _, v := range sig.Samples[0] {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0), p.ID)
			}
		}
	}
}

func TestNormalSinus_BeatCount(t *testing.T) {
	c := NewComposer()
	for seed := range uint64(5) {
		n := detectedBeats(t, c, "normal_sinus", seed)
		assert.GreaterOrEqual(t, n, 34, "seed %d", seed)
		assert.LessOrEqual(t, n, 41, "seed %d", seed)
	}
}

func TestRateOrdering(t *testing.T) {
	c := NewComposer()
	avg := func(pattern string) float64 {
		var sum int
		for seed := range uint64(3) {
			sum += detectedBeats(t, c, pattern, seed)
		}
		return float64(sum) / 3
	}
	brady, normal, tachy := avg("sinus_bradycardia"), avg("normal_sinus"), avg("sinus_tachycardia")
	assert.Less(t, brady, normal)
	assert.Less(t, normal, tachy)
}

func TestThirdDegreeBlock_FewerBeats(t *testing.T) {
	c := NewComposer()
	base := detectedBeats(t, c, "normal_sinus", 4)
	blocked := detectedBeats(t, c, "third_degree_block", 4)
	assert.Less(t, float64(blocked), 0.75*float64(base))
}

func TestCompose_Deterministic(t *testing.T) {
	c := NewComposer()
	a, err := c.Compose(seeded(99), "atrial_fibrillation", 2560, 256)
	require.NoError(t, err)
	b, err := c.Compose(seeded(99), "atrial_fibrillation", 2560, 256)
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)
}

func TestCompose_UnknownPattern(t *testing.T) {
	sig, err := NewComposer().Compose(seeded(1), "sinus_arrest", 256, 256)
	require.Error(t, err)
	assert.Nil(t, sig)
	assert.True(t, errors.Is(err, model.ErrInvalidPattern))
}

func TestDetector_CleanBaseline(t *testing.T) {
	x := DefaultSimulator.Simulate(seeded(2), 60, 20*256, 256)
	peaks, err := NewDetector().Detect(x, 256)
	require.NoError(t, err)
	assert.InDelta(t, 20, len(peaks), 2)
	for i := 1; i < len(peaks); i++ {
		assert.Greater(t, peaks[i], peaks[i-1])
		assert.InDelta(t, 256, peaks[i]-peaks[i-1], 30, "rr %d", i)
	}
	for _, p := range peaks {
		assert.Greater(t, x[p], 0.7, "peak at %d sits on an R wave", p)
	}
}

func TestDetector_Flat(t *testing.T) {
	peaks, err := NewDetector().Detect(make([]float64, 1024), 256)
	require.NoError(t, err)
	assert.Empty(t, peaks)
}

func TestDetector_LowRate(t *testing.T) {
	_, err := NewDetector().Detect(make([]float64, 100), 8)
	assert.Error(t, err)
}

func TestCompose_LowRateRejectedForEveryPattern(t *testing.T) {
	c := NewComposer()
	for _, p := range Catalog() {
		_, err := c.Compose(seeded(1), p.ID, 100, 10)
		assert.ErrorIs(t, err, model.ErrValidation, p.ID)
	}
	_, err := NewDetector().Detect(make([]float64, 120), MinSamplingRate)
	assert.NoError(t, err, "detector must be designable at the minimum rate")
}

func TestMobitz2_DropsEveryThird(t *testing.T) {
	b := &beats{x: ones(1000), peaks: []int{100, 300, 500, 700}, fs: 256}
	mobitz2(b)
	assert.Equal(t, 1.0, b.x[100])
	assert.Equal(t, 1.0, b.x[300])
	assert.Equal(t, 0.0, b.x[500])
	assert.Equal(t, 0.0, b.x[450])
	assert.Equal(t, 1.0, b.x[550])
}

func TestMobitz1_KeepsLastBeat(t *testing.T) {
	b := &beats{x: ones(1000), peaks: []int{100, 300, 500, 700}, fs: 256}
	mobitz1(b)
	assert.Equal(t, 1.0, b.x[700])

	b = &beats{x: ones(1200), peaks: []int{100, 300, 500, 700, 900}, fs: 256}
	mobitz1(b)
	assert.Equal(t, 0.0, b.x[700])
}

func TestEdits_SkipAtBoundary(t *testing.T) {
	b := &beats{x: ones(300), peaks: []int{250}, fs: 256}
	stShift(0.5)(b)
	lbbb(b)
	for _, v := range b.x {
		assert.Equal(t, 1.0, v)
	}
}

func TestVentricularTachycardia_ReplacesRhythm(t *testing.T) {
	b := &beats{x: ones(1024), fs: 256}
	ventricularTachycardia(b)
	period := 85 // 60/180*256
	assert.InDelta(t, 1.5, b.x[50], 1e-9)
	assert.InDelta(t, 1.5, b.x[period+50], 1e-9)
}

func TestExtractHRV(t *testing.T) {
	c := NewComposer()
	sig, err := c.Compose(seeded(5), "normal_sinus", 30*256, 256)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stats := ExtractHRV(context.Background(), logger, c.Detector, sig)
	require.NotEmpty(t, stats)
	assert.Empty(t, buf.String())

	byName := map[string]float64{}
	for _, s := range stats {
		byName[s.Name] = s.Value
		assert.False(t, math.IsNaN(s.Value) || math.IsInf(s.Value, 0), s.Name)
	}
	assert.InDelta(t, 800, byName["HRV_MeanNN"], 60)
	assert.Contains(t, byName, "HRV_RMSSD")
	assert.Contains(t, byName, "HRV_HF")
}

func TestExtractHRV_ShortSignalIsEmpty(t *testing.T) {
	c := NewComposer()
	sig, err := c.Compose(seeded(5), "normal_sinus", 256, 256)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stats := ExtractHRV(context.Background(), logger, c.Detector, sig)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
	assert.Contains(t, buf.String(), "hrv extraction failed")
	assert.Contains(t, buf.String(), "pattern=normal_sinus")
}

func TestAnalyze_InsufficientBeats(t *testing.T) {
	_, err := analyze(fixedDetector{10, 200}, make([]float64, 400), 256)
	assert.True(t, errors.Is(err, ErrInsufficientBeats))
}

func TestPercentile(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, percentile(s, 50), 1e-12)
	assert.InDelta(t, 1.75, percentile(s, 25), 1e-12)
	assert.InDelta(t, 4, percentile(s, 100), 1e-12)
}

type fixedDetector []int

func (f fixedDetector) Detect([]float64, int) ([]int, error) { return f, nil }

func ones(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	return x
}
