package model

import (
	"errors"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
		field   string
	}{
		{"ok", Request{Domain: DomainEEG, Pattern: "normal_awake", Duration: 10, SamplingRate: 256}, false, ""},
		{"fractional ok", Request{Domain: DomainECG, Pattern: "stemi", Duration: 0.5, SamplingRate: 256}, false, ""},
		{"bad domain", Request{Domain: "emg", Pattern: "x", Duration: 1, SamplingRate: 256}, true, "domain"},
		{"no pattern", Request{Domain: DomainEEG, Duration: 1, SamplingRate: 256}, true, "pattern"},
		{"zero duration", Request{Domain: DomainEEG, Pattern: "x", Duration: 0, SamplingRate: 256}, true, "duration"},
		{"negative rate", Request{Domain: DomainEEG, Pattern: "x", Duration: 1, SamplingRate: -1}, true, "sampling_rate"},
		{"over sample cap", Request{Domain: DomainEEG, Pattern: "flat_eeg", Duration: 1e7, SamplingRate: 100000}, true, "duration"},
		{"at sample cap", Request{Domain: DomainECG, Pattern: "stemi", Duration: DefaultMaxSamples / 250, SamplingRate: 250}, false, ""},
		{"not whole samples", Request{Domain: DomainEEG, Pattern: "x", Duration: 0.001, SamplingRate: 256}, true, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestRequestValidateMax(t *testing.T) {
	r := Request{Domain: DomainECG, Pattern: "stemi", Duration: 10, SamplingRate: 256}
	if err := r.ValidateMax(2560); err != nil {
		t.Errorf("expected no error at the limit, got %v", err)
	}
	err := r.ValidateMax(2559)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "duration" {
		t.Errorf("expected duration validation error, got %v", err)
	}
}

func TestSampleCount(t *testing.T) {
	r := Request{Duration: 2.5, SamplingRate: 128}
	if got := r.SampleCount(); got != 320 {
		t.Errorf("expected 320, got %d", got)
	}
}

func TestInvalidPatternIs(t *testing.T) {
	var err error = &InvalidPatternError{Domain: DomainECG, Pattern: "nope"}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Error("expected errors.Is to match ErrInvalidPattern")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("did not expect ErrValidation match")
	}
}

func TestFeatureSetEmpty(t *testing.T) {
	if !(FeatureSet{}).Empty() {
		t.Error("expected zero FeatureSet to be empty")
	}
	if (FeatureSet{HRV: []Stat{{Name: "HRV_MeanNN", Value: 800}}}).Empty() {
		t.Error("expected populated FeatureSet to be non-empty")
	}
}
