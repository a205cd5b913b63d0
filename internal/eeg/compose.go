package eeg

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rcliao/biosynth/internal/dsp"
	"github.com/rcliao/biosynth/internal/model"
)

// gen carries the per-request generation state. It is never shared between
// requests.
type gen struct {
	rng *rand.Rand
	n   int
	fs  float64
}

// Compose generates a NumChannels × n recording of the given pattern at fs Hz.
// Channels are composed independently from the caller's RNG, so equal seeds
// give bit-identical output.
func Compose(rng *rand.Rand, pattern string, n, fs int) (*model.Signal, error) {
	p, err := Lookup(pattern)
	if err != nil {
		return nil, err
	}
	if n < 1 || fs < 1 {
		return nil, &model.ValidationError{Field: "sampling_rate", Reason: "sample count and rate must be positive"}
	}

	g := &gen{rng: rng, n: n, fs: float64(fs)}
	samples := make([][]float64, NumChannels)
	for ch := range samples {
		x, err := p.channel(g, ch)
		if err != nil {
			return nil, fmt.Errorf("compose %s channel %s: %w", p.ID, Channels[ch], err)
		}
		samples[ch] = x
	}

	return &model.Signal{
		Domain:       model.DomainEEG,
		Pattern:      p.ID,
		SamplingRate: fs,
		Channels:     append([]string(nil), Channels...),
		Samples:      samples,
	}, nil
}

func (p *Pattern) channel(g *gen, ch int) ([]float64, error) {
	x := make([]float64, g.n)
	for _, c := range p.components {
		b, err := g.band(c.band, g.n)
		if err != nil {
			return nil, err
		}
		addScaled(x, b, c.weight)
	}
	if p.layer != nil {
		l, err := p.layer(g, ch)
		if err != nil {
			return nil, err
		}
		addScaled(x, l, 1)
	}
	if p.noiseStd > 0 {
		for i := range x {
			x[i] += g.rng.NormFloat64() * p.noiseStd
		}
	}
	if p.artifacts {
		g.addDrift(x)
		g.addBlink(x)
	}
	return x, nil
}

func (g *gen) band(b Band, n int) ([]float64, error) {
	return dsp.BandLimitedNoise(g.rng, b.Low, b.High, n, g.fs)
}

// addDrift adds a 0.1 Hz, 10 µV electrode drift.
func (g *gen) addDrift(x []float64) {
	for i := range x {
		x[i] += 10 * math.Sin(2*math.Pi*0.1*float64(i)/g.fs)
	}
}

// addBlink adds, with probability 0.2, one decaying 100 µV eye-blink pulse.
func (g *gen) addBlink(x []float64) {
	const width = 20
	if g.rng.Float64() >= 0.2 {
		return
	}
	pos := g.pos(width)
	pulse := make([]float64, width)
	for k := range pulse {
		pulse[k] = 100 * math.Exp(-float64(k)/5)
	}
	addAt(x, pos, pulse)
}

// intn returns a value in [lo, hi).
func (g *gen) intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo)
}

// pos returns a random start for an event of the given width, or 0 when the
// recording is shorter than the event.
func (g *gen) pos(width int) int {
	return g.intn(0, g.n-width)
}

// linspace returns n points evenly spaced over [0, stop].
func linspace(stop float64, n int) []float64 {
	t := make([]float64, n)
	if n == 1 {
		return t
	}
	step := stop / float64(n-1)
	for i := range t {
		t[i] = float64(i) * step
	}
	return t
}

func gaussBump(t, center, width float64) float64 {
	z := (t - center) / width
	return math.Exp(-z * z)
}

// addAt adds src into dst starting at pos, clipping at the end of dst.
func addAt(dst []float64, pos int, src []float64) {
	for k, v := range src {
		i := pos + k
		if i < 0 {
			continue
		}
		if i >= len(dst) {
			return
		}
		dst[i] += v
	}
}

func addScaled(dst, src []float64, w float64) {
	for i := range dst {
		dst[i] += src[i] * w
	}
}
