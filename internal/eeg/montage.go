// Package eeg composes synthetic 16-channel scalp recordings for a fixed
// catalog of normal and abnormal patterns and extracts band-power features.
package eeg

// Channels is the canonical 10-20 montage, in output row order.
var Channels = []string{
	"Fp1", "Fp2", "F3", "F4", "C3", "C4", "P3", "P4",
	"O1", "O2", "F7", "F8", "T3", "T4", "Cz", "Pz",
}

// NumChannels is the fixed channel count of every generated recording.
const NumChannels = 16

var (
	frontal  = map[int]bool{0: true, 1: true, 2: true, 3: true}
	temporal = map[int]bool{12: true, 13: true}
)

// Band is a named frequency range in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

var (
	Delta = Band{Name: "delta", Low: 1, High: 4}
	Theta = Band{Name: "theta", Low: 4, High: 8}
	Alpha = Band{Name: "alpha", Low: 8, High: 12}
	Beta  = Band{Name: "beta", Low: 13, High: 30}
	Gamma = Band{Name: "gamma", Low: 30, High: 45}
)

// Bands are the canonical feature bands, in feature-column order.
var Bands = []Band{Delta, Theta, Alpha, Beta, Gamma}
