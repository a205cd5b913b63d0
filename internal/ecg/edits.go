package ecg

import (
	"math"
	"math/rand/v2"
)

// beats is the mutable working copy an edit operates on. Offsets inside the
// edits are in samples, anchored to the detected R peaks.
type beats struct {
	x     []float64
	peaks []int
	fs    float64
	rng   *rand.Rand
}

type editFunc func(b *beats)

// qrsHalf is the half-width, in samples, of a dropped QRS window.
const qrsHalf = 50

func (b *beats) dropQRS(r int) {
	lo := max(r-qrsHalf, 0)
	hi := min(r+qrsHalf, len(b.x))
	for i := lo; i < hi; i++ {
		b.x[i] = 0
	}
}

// bump returns n samples of amp*exp(-((k-center)/width)^2).
func bump(n int, center, width, amp float64) []float64 {
	out := make([]float64, n)
	for k := range out {
		z := (float64(k) - center) / width
		out[k] = amp * math.Exp(-z*z)
	}
	return out
}

// timeAxis returns n points evenly spaced over [0, n/fs].
func timeAxis(n int, fs float64) []float64 {
	t := make([]float64, n)
	if n < 2 {
		return t
	}
	step := float64(n) / fs / float64(n-1)
	for i := range t {
		t[i] = float64(i) * step
	}
	return t
}

func addAt(dst []float64, pos int, src []float64) {
	for k, v := range src {
		if i := pos + k; i >= 0 && i < len(dst) {
			dst[i] += v
		}
	}
}

func setAt(dst []float64, pos int, src []float64) {
	for k, v := range src {
		if i := pos + k; i >= 0 && i < len(dst) {
			dst[i] = v
		}
	}
}

func addConst(dst []float64, lo, hi int, v float64) {
	for i := max(lo, 0); i < min(hi, len(dst)); i++ {
		dst[i] += v
	}
}

// period converts a rate in bpm to a whole number of samples, at least one.
func (b *beats) period(bpm float64) int {
	return max(int(60/bpm*b.fs), 1)
}

func firstDegreeBlock(b *beats) {
	p := bump(50, 25, 10, 0.3)
	for _, r := range b.peaks {
		if r > 100 && r-300 >= 0 {
			addAt(b.x, r-300, p)
		}
	}
}

// mobitz1 drops every fourth beat, never the last.
func mobitz1(b *beats) {
	for i, r := range b.peaks {
		if i == len(b.peaks)-1 {
			break
		}
		if i%4 == 3 {
			b.dropQRS(r)
		}
	}
}

func mobitz2(b *beats) {
	for i, r := range b.peaks {
		if i%3 == 2 {
			b.dropQRS(r)
		}
	}
}

// thirdDegreeBlock drops every other beat and overlays an independent
// 100 bpm atrial train.
func thirdDegreeBlock(b *beats) {
	for i, r := range b.peaks {
		if i%2 == 0 {
			b.dropQRS(r)
		}
	}
	p := bump(50, 25, 8, 0.2)
	for i := 0; i < len(b.x); i += b.period(100) {
		if i+50 < len(b.x) {
			addAt(b.x, i, p)
		}
	}
}

// widenedQRS replaces [r-60, r+after) with two Gaussians on a seconds axis.
func (b *beats) widenedQRS(after int, a1, c1, w1, a2, c2, w2 float64) {
	span := 60 + after
	t := timeAxis(span, b.fs)
	qrs := make([]float64, span)
	for k, tk := range t {
		z1, z2 := (tk-c1)/w1, (tk-c2)/w2
		qrs[k] = a1*math.Exp(-z1*z1) + a2*math.Exp(-z2*z2)
	}
	for _, r := range b.peaks {
		if r+after < len(b.x) && r-60 >= 0 {
			setAt(b.x, r-60, qrs)
		}
	}
}

func lbbb(b *beats) { b.widenedQRS(100, 1.5, 0.08, 0.04, 0.3, 0.12, 0.02) }

func rbbb(b *beats) { b.widenedQRS(120, 1.2, 0.08, 0.04, 0.8, 0.15, 0.03) }

func stShift(v float64) editFunc {
	return func(b *beats) {
		for _, r := range b.peaks {
			if r+200 < len(b.x) {
				addConst(b.x, r+80, r+200, v)
			}
		}
	}
}

func atrialFibrillation(b *beats) {
	for _, r := range b.peaks {
		if b.rng.Float64() < 0.2 {
			b.dropQRS(r)
		}
	}
	for i, tk := range timeAxis(len(b.x), b.fs) {
		b.x[i] += 0.1 * math.Sin(2*math.Pi*8*tk) * b.rng.Float64()
	}
}

// tile replaces the recording with an isoelectric line carrying a copy of
// shape every period samples.
func (b *beats) tile(period int, shape []float64) {
	clear(b.x)
	for i := 0; i < len(b.x); i += period {
		if i+len(shape) < len(b.x) {
			setAt(b.x, i, shape)
		}
	}
}

func ventricularTachycardia(b *beats) {
	b.tile(b.period(180), bump(100, 50, 20, 1.5))
}

func pulmonaryEmbolism(b *beats) {
	qrs := bump(100, 50, 20, 1)
	copy(qrs[60:], bump(40, 20, 10, -0.3))
	b.tile(b.period(110), qrs)
}

func hyperkalemia(b *beats) {
	qrs := bump(160, 80, 20, 1.3)
	t := bump(60, 30, 15, 0.8)
	for _, r := range b.peaks {
		if r+150 < len(b.x) && r-60 >= 0 {
			setAt(b.x, r-60, qrs)
			addAt(b.x, r+120, t)
		}
	}
}

func hypokalemia(b *beats) {
	t := bump(40, 20, 20, 0.2)
	u := bump(40, 20, 15, 0.3)
	for _, r := range b.peaks {
		if r+200 < len(b.x) {
			setAt(b.x, r+120, t)
			addAt(b.x, r+160, u)
		}
	}
}

func pericarditis(b *beats) {
	for _, r := range b.peaks {
		if r+200 < len(b.x) {
			addConst(b.x, r+80, r+200, 0.4)
			if r > 100 {
				addConst(b.x, r-100, r-20, -0.2)
			}
		}
	}
}

// digitalisEffect scoops the ST segment with a half-sine depression.
func digitalisEffect(b *beats) {
	const span = 70
	scoop := make([]float64, span)
	for k := range scoop {
		scoop[k] = -0.4 * math.Sin(math.Pi*float64(k)/(span-1))
	}
	for _, r := range b.peaks {
		if r+150 < len(b.x) {
			addAt(b.x, r+80, scoop)
		}
	}
}
