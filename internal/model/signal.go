// Package model defines the core waveform, feature and session data types.
package model

import (
	"fmt"
	"math"
	"time"
)

// Domain selects a signal family.
type Domain string

const (
	DomainEEG Domain = "eeg"
	DomainECG Domain = "ecg"
)

// ValidDomains are the supported signal families.
var ValidDomains = map[Domain]bool{
	DomainEEG: true,
	DomainECG: true,
}

// Class marks a pattern as normal or abnormal.
type Class string

const (
	ClassNormal   Class = "normal"
	ClassAbnormal Class = "abnormal"
)

// PatternInfo describes one catalog entry.
type PatternInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Class Class  `json:"class"`
}

// Request carries the parameters of one generation.
type Request struct {
	Domain       Domain  `json:"domain"`
	Pattern      string  `json:"pattern"`
	Duration     float64 `json:"duration"`
	SamplingRate int     `json:"sampling_rate"`
	Seed         *uint64 `json:"seed,omitempty"`
}

const sampleCountTolerance = 1e-9

// DefaultMaxSamples caps samples per channel when no other limit is set.
const DefaultMaxSamples = 1_000_000

// SampleCount returns duration*sampling_rate rounded to the nearest integer.
func (r Request) SampleCount() int {
	return int(math.Round(r.Duration * float64(r.SamplingRate)))
}

// Validate checks the numeric parameters against DefaultMaxSamples. Pattern
// resolution is left to the catalogs.
func (r Request) Validate() error {
	return r.ValidateMax(DefaultMaxSamples)
}

// ValidateMax is Validate with an explicit per-channel sample cap.
func (r Request) ValidateMax(maxSamples int) error {
	if !ValidDomains[r.Domain] {
		return &ValidationError{Field: "domain", Reason: "must be eeg or ecg"}
	}
	if r.Pattern == "" {
		return &ValidationError{Field: "pattern", Reason: "is required"}
	}
	if math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0) || r.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be > 0"}
	}
	if r.SamplingRate <= 0 {
		return &ValidationError{Field: "sampling_rate", Reason: "must be > 0"}
	}
	exact := r.Duration * float64(r.SamplingRate)
	if exact > float64(maxSamples) {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("duration * sampling_rate exceeds the limit of %d samples", maxSamples)}
	}
	if math.Abs(exact-math.Round(exact)) > sampleCountTolerance {
		return &ValidationError{Field: "duration", Reason: "duration * sampling_rate must be a whole number of samples"}
	}
	if r.SampleCount() < 1 {
		return &ValidationError{Field: "duration", Reason: "yields no samples"}
	}
	return nil
}

// Signal is a generated waveform, stored channel-major.
// EEG signals carry 16 channels; ECG signals carry one.
type Signal struct {
	Domain       Domain      `json:"domain"`
	Pattern      string      `json:"pattern"`
	SamplingRate int         `json:"sampling_rate"`
	Channels     []string    `json:"channels"`
	Samples      [][]float64 `json:"samples"`
}

// Len returns the number of samples per channel.
func (s *Signal) Len() int {
	if len(s.Samples) == 0 {
		return 0
	}
	return len(s.Samples[0])
}

// BandPower is a channel × band table of integrated spectral power.
type BandPower struct {
	Bands    []string    `json:"bands"`
	Channels []string    `json:"channels"`
	Power    [][]float64 `json:"power"`
}

// Stat is one named heart-rate-variability statistic.
type Stat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FeatureSet holds the features derived from one signal. Exactly one of the
// two fields is populated for a given domain; an ECG feature set with no
// statistics is a valid result.
type FeatureSet struct {
	BandPower *BandPower `json:"band_power,omitempty"`
	HRV       []Stat     `json:"hrv,omitempty"`
}

// Empty reports whether no feature values were produced.
func (f FeatureSet) Empty() bool {
	return f.BandPower == nil && len(f.HRV) == 0
}

// Session is a persisted generation.
type Session struct {
	ID           string     `json:"id"`
	Domain       Domain     `json:"domain"`
	Pattern      string     `json:"pattern"`
	Class        Class      `json:"class"`
	Duration     float64    `json:"duration"`
	SamplingRate int        `json:"sampling_rate"`
	Seed         uint64     `json:"seed"`
	SampleCount  int        `json:"sample_count"`
	Channels     []string   `json:"channels"`
	Features     FeatureSet `json:"features"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	Segments     int        `json:"segments,omitempty"`
	Signal       *Signal    `json:"-"`
}
