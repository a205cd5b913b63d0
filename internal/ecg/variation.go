package ecg

import (
	"math"
	"math/rand/v2"
)

// addVariation layers baseline wander (0.1 Hz), muscle artifact and
// respiratory modulation (0.2 Hz) onto x in place.
func addVariation(rng *rand.Rand, x []float64, fs float64) {
	for i, t := range timeAxis(len(x), fs) {
		x[i] += 0.1*math.Sin(2*math.Pi*0.1*t) +
			rng.NormFloat64()*0.05 +
			0.05*math.Sin(2*math.Pi*0.2*t)
	}
}
