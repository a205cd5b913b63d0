package ecg

import (
	"github.com/rcliao/biosynth/internal/model"
)

// Pattern is one cardiac catalog entry: the baseline rate handed to the
// simulator and the beat-anchored edit applied to it. Normal rhythms have no
// edit.
type Pattern struct {
	model.PatternInfo
	HeartRate float64
	edit      editFunc
}

const baselineRate = 75

func normal(id, label string, rate float64) Pattern {
	return Pattern{
		PatternInfo: model.PatternInfo{ID: id, Label: label, Class: model.ClassNormal},
		HeartRate:   rate,
	}
}

func abnormal(id, label string, edit editFunc) Pattern {
	return Pattern{
		PatternInfo: model.PatternInfo{ID: id, Label: label, Class: model.ClassAbnormal},
		HeartRate:   baselineRate,
		edit:        edit,
	}
}

var catalog = []Pattern{
	normal("normal_sinus", "Normal Sinus Rhythm", baselineRate),
	normal("sinus_bradycardia", "Sinus Bradycardia", 45),
	normal("sinus_tachycardia", "Sinus Tachycardia", 120),

	abnormal("first_degree_block", "First Degree Heart Block", firstDegreeBlock),
	abnormal("second_degree_mobitz1", "Second Degree Mobitz I", mobitz1),
	abnormal("second_degree_mobitz2", "Second Degree Mobitz II", mobitz2),
	abnormal("third_degree_block", "Third Degree Heart Block", thirdDegreeBlock),
	abnormal("lbbb", "Left Bundle Branch Block", lbbb),
	abnormal("rbbb", "Right Bundle Branch Block", rbbb),
	abnormal("stemi", "STEMI", stShift(0.5)),
	abnormal("nstemi", "NSTEMI", stShift(-0.3)),
	abnormal("atrial_fibrillation", "Atrial Fibrillation", atrialFibrillation),
	abnormal("ventricular_tachycardia", "Ventricular Tachycardia", ventricularTachycardia),
	abnormal("hyperkalemia", "Hyperkalemia", hyperkalemia),
	abnormal("hypokalemia", "Hypokalemia", hypokalemia),
	abnormal("pericarditis", "Pericarditis", pericarditis),
	abnormal("pulmonary_embolism", "Pulmonary Embolism", pulmonaryEmbolism),
	abnormal("digitalis_effect", "Digitalis Effect", digitalisEffect),
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
		return nil, &model.InvalidPatternError{Domain: model.DomainECG, Pattern: id}
	}
	return p, nil
}

// Catalog returns the pattern listing in catalog order.
func Catalog() []model.PatternInfo {
	out := make([]model.PatternInfo, len(catalog))
	for i, p := range catalog {
		out[i] = p.PatternInfo
	}
	return out
}
