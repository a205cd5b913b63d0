package eeg

import (
	"math"
)

// layerFunc builds the pattern-specific layer for one channel.
type layerFunc func(g *gen, ch int) ([]float64, error)

// sleepSpindles places 3-7 Gaussian-enveloped 12 Hz bursts of 50-100 samples.
func sleepSpindles(g *gen, _ int) ([]float64, error) {
	out := make([]float64, g.n)
	for range g.intn(3, 8) {
		start := g.pos(100)
		dur := g.intn(50, 100)
		t := linspace(float64(dur)/g.fs, dur)
		mid := t[dur/2]
		burst := make([]float64, dur)
		for k, tk := range t {
			burst[k] = gaussBump(tk, mid, 0.1) * math.Sin(2*math.Pi*12*tk) * 50
		}
		addAt(out, start, burst)
	}
	return out, nil
}

// interictalSpikes places 5-14 decaying 20 Hz spike transients.
func interictalSpikes(g *gen, _ int) ([]float64, error) {
	const width = 50
	out := make([]float64, g.n)
	spike := make([]float64, width)
	for k := range spike {
		spike[k] = math.Exp(-float64(k)/5) * math.Sin(2*math.Pi*20*float64(k)/g.fs) * 100
	}
	for range g.intn(5, 15) {
		addAt(out, g.pos(width), spike)
	}
	return out, nil
}

// spikeWave3Hz places 3-7 sharp-spike plus slow-wave complexes.
func spikeWave3Hz(g *gen, _ int) ([]float64, error) {
	const width = 200
	out := make([]float64, g.n)
	t := linspace(width/g.fs, width)
	complexWave := make([]float64, width)
	for k, tk := range t {
		complexWave[k] = 150*gaussBump(tk, 0.05, 0.01) - 80*gaussBump(tk, 0.15, 0.05)
	}
	for range g.intn(3, 8) {
		addAt(out, g.pos(width), complexWave)
	}
	return out, nil
}

// focalSpikes fires 3-9 decaying spikes, large over frontal sensors.
func focalSpikes(g *gen, ch int) ([]float64, error) {
	const width = 30
	amp := 30.0
	if frontal[ch] {
		amp = 120
	}
	out := make([]float64, g.n)
	spike := make([]float64, width)
	for k := range spike {
		spike[k] = math.Exp(-float64(k)/3) * amp
	}
	for range g.intn(3, 10) {
		addAt(out, g.pos(width), spike)
	}
	return out, nil
}

// polyspikes places 2-5 triplets of closely spaced spikes.
func polyspikes(g *gen, _ int) ([]float64, error) {
	const width, spacing = 20, 20
	out := make([]float64, g.n)
	spike := make([]float64, width)
	for k := range spike {
		spike[k] = math.Exp(-float64(k)/2) * 80
	}
	for range g.intn(2, 6) {
		start := g.pos(100)
		for i := range 3 {
			addAt(out, start+i*spacing, spike)
		}
	}
	return out, nil
}

// hypsarrhythmia places 10-19 chaotic 2 Hz slow-wave bursts, each overlaid
// with spikes on a Bernoulli(0.2) mask.
func hypsarrhythmia(g *gen, _ int) ([]float64, error) {
	out := make([]float64, g.n)
	for range g.intn(10, 20) {
		start := g.pos(100)
		dur := g.intn(50, 100)
		burst := make([]float64, dur)
		for k := range burst {
			burst[k] = math.Sin(2*math.Pi*2*float64(k)/g.fs) * 100
			if g.rng.Float64() < 0.2 {
				burst[k] += 50
			}
		}
		addAt(out, start, burst)
	}
	return out, nil
}

// focalSlowing adds delta activity, large over temporal sensors.
func focalSlowing(g *gen, ch int) ([]float64, error) {
	amp := 10.0
	if temporal[ch] {
		amp = 60
	}
	delta, err := g.band(Delta, g.n)
	if err != nil {
		return nil, err
	}
	for i := range delta {
		delta[i] *= amp
	}
	return delta, nil
}

// diffuseSlowing adds widespread delta and theta, no spikes.
func diffuseSlowing(g *gen, _ int) ([]float64, error) {
	out := make([]float64, g.n)
	delta, err := g.band(Delta, g.n)
	if err != nil {
		return nil, err
	}
	theta, err := g.band(Theta, g.n)
	if err != nil {
		return nil, err
	}
	addScaled(out, delta, 50)
	addScaled(out, theta, 40)
	return out, nil
}

// triphasicWaves places 3-7 positive-negative-positive complexes.
func triphasicWaves(g *gen, _ int) ([]float64, error) {
	const width = 150
	out := make([]float64, g.n)
	t := linspace(width/g.fs, width)
	wave := make([]float64, width)
	for k, tk := range t {
		wave[k] = 60*gaussBump(tk, 0.05, 0.02) - 80*gaussBump(tk, 0.1, 0.02) + 60*gaussBump(tk, 0.15, 0.02)
	}
	for range g.intn(3, 8) {
		addAt(out, g.pos(width), wave)
	}
	return out, nil
}

// periodicDischarges fires one sharp discharge at the start of every second.
func periodicDischarges(g *gen, _ int) ([]float64, error) {
	const width = 50
	out := make([]float64, g.n)
	discharge := make([]float64, width)
	for k := range discharge {
		discharge[k] = math.Exp(-float64(k)/5) * 100
	}
	period := int(g.fs)
	for i := 0; i < g.n; i += period {
		if i+width < g.n {
			addAt(out, i, discharge)
		}
	}
	return out, nil
}

// burstSuppression tiles 0.5 s broadband bursts separated by 2 s of silence.
func burstSuppression(g *gen, _ int) ([]float64, error) {
	burstLen := int(g.fs) / 2
	suppLen := int(g.fs) * 2
	out := make([]float64, g.n)
	for i := 0; i < g.n; {
		if i+burstLen < g.n {
			burst, err := g.band(Band{Name: "burst", Low: 1, High: 30}, burstLen)
			if err != nil {
				return nil, err
			}
			addScaled(out[i:i+burstLen], burst, 80)
			i += burstLen
		}
		if i+suppLen >= g.n {
			break
		}
		i += suppLen
	}
	return out, nil
}

// alphaComa is attenuated, unreactive alpha activity.
func alphaComa(g *gen, _ int) ([]float64, error) {
	alpha, err := g.band(Alpha, g.n)
	if err != nil {
		return nil, err
	}
	for i := range alpha {
		alpha[i] *= 40 * 0.5
	}
	return alpha, nil
}

// flat is isoelectric: low-amplitude noise with no structure.
func flat(g *gen, _ int) ([]float64, error) {
	out := make([]float64, g.n)
	for i := range out {
		out[i] = g.rng.NormFloat64() * 2
	}
	return out, nil
}
