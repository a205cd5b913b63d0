// Package embedding turns a session's feature table into a vector so sessions
// can be compared and ranked by similarity.
package embedding

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/rcliao/biosynth/internal/model"
)

// Vector is a feature embedding. Names label the components and are sorted.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of components.
func (v Vector) Len() int { return len(v.Values) }

// Embed flattens a feature set. Band power becomes one component per
// channel/band cell; HRV becomes one component per statistic. Values are
// compressed with a signed log so no single statistic dominates.
func Embed(fs model.FeatureSet) Vector {
	m := map[string]float64{}
	if bp := fs.BandPower; bp != nil {
		for ch, row := range bp.Power {
			for b, p := range row {
				m[bp.Channels[ch]+"/"+bp.Bands[b]] = p
			}
		}
	}
	for _, s := range fs.HRV {
		m[s.Name] = s.Value
	}

	v := Vector{Names: make([]string, 0, len(m))}
	for name := range m {
		v.Names = append(v.Names, name)
	}
	sort.Strings(v.Names)
	v.Values = make([]float64, len(v.Names))
	for i, name := range v.Names {
		v.Values[i] = signedLog(m[name])
	}
	return v
}

func signedLog(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Copysign(math.Log1p(math.Abs(x)), x)
}

// CosineSimilarity compares two vectors over the components they share.
// It is 0 when they share none or either side is all zeros.
func CosineSimilarity(a, b Vector) float64 {
	var x, y []float64
	for i, j := 0, 0; i < len(a.Names) && j < len(b.Names); {
		switch {
		case a.Names[i] == b.Names[j]:
			x = append(x, a.Values[i])
			y = append(y, b.Values[j])
			i++
			j++
		case a.Names[i] < b.Names[j]:
			i++
		default:
			j++
		}
	}
	if len(x) == 0 {
		return 0
	}
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(x, y) / (na * nb)
}

// Match is one ranked candidate.
type Match struct {
	Session model.Session `json:"session"`
	Score   float64       `json:"score"`
}

// Rank scores candidates against query, best first. Candidates without
// features, or with the given exclude id, are skipped. limit <= 0 keeps all.
func Rank(query Vector, candidates []model.Session, exclude string, limit int) []Match {
	var out []Match
	for _, c := range candidates {
		if c.ID == exclude || c.Features.Empty() {
			continue
		}
		out = append(out, Match{Session: c, Score: CosineSimilarity(query, Embed(c.Features))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
