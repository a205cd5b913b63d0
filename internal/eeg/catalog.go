package eeg

import (
	"github.com/rcliao/biosynth/internal/model"
)

// component is one band-limited term of a channel mixture.
type component struct {
	band   Band
	weight float64
}

// Pattern is one catalog entry. Every active mixture term is listed
// explicitly; a pattern has no implicit defaults.
type Pattern struct {
	model.PatternInfo
	components []component
	layer      layerFunc
	noiseStd   float64
	artifacts  bool // slow drift and stochastic eye blink
}

// baseMix is the background mixture under most abnormal layers.
var baseMix = []component{{Alpha, 30}, {Beta, 20}, {Theta, 15}}

func normal(id, label string, layer layerFunc, comps ...component) Pattern {
	return Pattern{
		PatternInfo: model.PatternInfo{ID: id, Label: label, Class: model.ClassNormal},
		components:  comps,
		layer:       layer,
		noiseStd:    3,
		artifacts:   true,
	}
}

func abnormal(id, label string, layer layerFunc) Pattern {
	return Pattern{
		PatternInfo: model.PatternInfo{ID: id, Label: label, Class: model.ClassAbnormal},
		components:  baseMix,
		layer:       layer,
		noiseStd:    5,
	}
}

var catalog = []Pattern{
	normal("normal_awake", "Normal Awake", nil, component{Alpha, 60}, component{Beta, 30}, component{Gamma, 15}),
	normal("sleep_stage1", "Sleep Stage 1", nil, component{Alpha, 20}, component{Theta, 50}, component{Beta, 15}),
	normal("sleep_stage2", "Sleep Stage 2", sleepSpindles, component{Theta, 60}, component{Delta, 30}),
	normal("sleep_stage3", "Sleep Stage 3", nil, component{Delta, 80}, component{Theta, 20}),
	normal("rem_sleep", "REM Sleep", nil, component{Theta, 40}, component{Beta, 35}, component{Alpha, 25}),

	abnormal("interictal_spikes", "Interictal Spikes", interictalSpikes),
	abnormal("spike_wave_3hz", "3 Hz Spike-Wave", spikeWave3Hz),
	abnormal("focal_spikes", "Focal Spikes", focalSpikes),
	abnormal("polyspike", "Polyspike", polyspikes),
	abnormal("hypsarrhythmia", "Hypsarrhythmia", hypsarrhythmia),
	abnormal("focal_slowing", "Focal Slowing", focalSlowing),
	abnormal("diffuse_slowing", "Diffuse Slowing", diffuseSlowing),
	abnormal("triphasic_waves", "Triphasic Waves", triphasicWaves),
	abnormal("periodic_discharges", "Periodic Discharges", periodicDischarges),
	abnormal("burst_suppression", "Burst Suppression", burstSuppression),
	{
		PatternInfo: model.PatternInfo{ID: "alpha_coma", Label: "Alpha Coma", Class: model.ClassAbnormal},
		layer:       alphaComa,
		noiseStd:    5,
	},
	{
		PatternInfo: model.PatternInfo{ID: "flat_eeg", Label: "Flat EEG", Class: model.ClassAbnormal},
		layer:       flat,
	},
}

var registry = func() map[string]*Pattern {
	m := make(map[string]*Pattern, len(catalog))
	for i := range catalog {
		m[catalog[i].ID] = &catalog[i]
	}
	return m
}()

// Lookup resolves a pattern id.
func Lookup(id string) (*Pattern, error) {
	p, ok := registry[id]
	if !ok {
		return nil, &model.InvalidPatternError{Domain: model.DomainEEG, Pattern: id}
	}
	return p, nil
}

// Catalog returns a snapshot of the pattern listing in catalog order.
func Catalog() []model.PatternInfo {
	out := make([]model.PatternInfo, len(catalog))
	for i, p := range catalog {
		out[i] = p.PatternInfo
	}
	return out
}
