package ecg

import (
	"fmt"
	"math/rand/v2"

	"github.com/rcliao/biosynth/internal/model"
)

// Lead is the channel name of the single cardiac lead.
const Lead = "ECG"

// MinSamplingRate is the lowest rate at which the detector's 5 Hz QRS band
// can be designed. Every cardiac pattern is rejected below it.
const MinSamplingRate = 12

// Composer builds cardiac recordings from a baseline simulator and an R-peak
// detector. Both are stateless, so one Composer serves concurrent requests.
type Composer struct {
	Sim      Simulator
	Detector Detector
}

// NewComposer returns a Composer using the default simulator and detector.
func NewComposer() *Composer {
	return &Composer{Sim: DefaultSimulator, Detector: NewDetector()}
}

// Compose generates n samples of the given pattern at fs Hz. Abnormal edits
// are anchored to peaks detected on the unedited baseline; edits whose window
// would cross the recording boundary are skipped.
func (c *Composer) Compose(rng *rand.Rand, pattern string, n, fs int) (*model.Signal, error) {
	p, err := Lookup(pattern)
	if err != nil {
		return nil, err
	}
	if n < 1 || fs < 1 {
		return nil, &model.ValidationError{Field: "sampling_rate", Reason: "sample count and rate must be positive"}
	}
	if fs < MinSamplingRate {
		return nil, &model.ValidationError{Field: "sampling_rate", Reason: fmt.Sprintf("must be at least %d Hz for cardiac patterns", MinSamplingRate)}
	}

	x := c.Sim.Simulate(rng, p.HeartRate, n, fs)
	if p.edit != nil {
		peaks, err := c.Detector.Detect(x, fs)
		if err != nil {
			return nil, fmt.Errorf("detect baseline peaks for %s: %w", p.ID, err)
		}
		p.edit(&beats{x: x, peaks: peaks, fs: float64(fs), rng: rng})
	}
	addVariation(rng, x, float64(fs))

	return &model.Signal{
		Domain:       model.DomainECG,
		Pattern:      p.ID,
		SamplingRate: fs,
		Channels:     []string{Lead},
		Samples:      [][]float64{x},
	}, nil
}
