package ecg

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rcliao/biosynth/internal/dsp"
)

// Detector locates R peaks and returns their sample indices in ascending order.
type Detector interface {
	Detect(x []float64, fs int) ([]int, error)
}

// GradientDetector finds QRS complexes as blocks where the smoothed absolute
// gradient of the QRS-band signal exceeds a moving threshold, and takes the
// maximum of the cleaned signal inside each block as the R peak.
type GradientDetector struct {
	SmoothWindow     float64 // seconds, gradient smoothing
	AvgWindow        float64 // seconds, threshold averaging
	GradThreshWeight float64
	MinLenWeight     float64 // blocks shorter than this fraction of the mean are dropped
	MinDelay         float64 // seconds between accepted peaks
	FloorWeight      float64 // fraction of the 98th gradient percentile used as a threshold floor
}

// NewDetector returns a GradientDetector with the stock parameters.
func NewDetector() *GradientDetector {
	return &GradientDetector{
		SmoothWindow:     0.1,
		AvgWindow:        0.75,
		GradThreshWeight: 1.5,
		MinLenWeight:     0.4,
		MinDelay:         0.3,
		FloorWeight:      0.3,
	}
}

// Detect returns ascending R-peak indices. Inputs shorter than three samples
// have no peaks.
func (d *GradientDetector) Detect(x []float64, fs int) ([]int, error) {
	if len(x) < 3 {
		return nil, nil
	}
	rate := float64(fs)
	clean, err := bandpass(x, 2, 0.5, math.Min(40, 0.45*rate), rate)
	if err != nil {
		return nil, err
	}
	qrs, err := bandpass(x, 2, 5, math.Min(15, 0.45*rate), rate)
	if err != nil {
		return nil, err
	}

	grad := gradient(qrs)
	for i := range grad {
		grad[i] = math.Abs(grad[i])
	}
	smooth := boxcar(grad, int(math.Round(d.SmoothWindow*rate)))
	avg := boxcar(smooth, int(math.Round(d.AvgWindow*rate)))

	sorted := slices.Clone(smooth)
	slices.Sort(sorted)
	floor := d.FloorWeight * stat.Quantile(0.98, stat.Empirical, sorted, nil)

	var starts, ends []int
	in := false
	for i, v := range smooth {
		above := v > math.Max(d.GradThreshWeight*avg[i], floor)
		switch {
		case above && !in:
			starts = append(starts, i)
		case !above && in:
			ends = append(ends, i)
		}
		in = above
	}
	if in {
		ends = append(ends, len(smooth))
	}
	if len(starts) == 0 {
		return nil, nil
	}

	lens := make([]float64, len(starts))
	for i := range starts {
		lens[i] = float64(ends[i] - starts[i])
	}
	minLen := stat.Mean(lens, nil) * d.MinLenWeight
	minDelay := int(math.Round(d.MinDelay * rate))

	var peaks []int
	for i := range starts {
		if lens[i] <= minLen {
			continue
		}
		p := starts[i] + floats.MaxIdx(clean[starts[i]:ends[i]])
		if len(peaks) == 0 || p-peaks[len(peaks)-1] > minDelay {
			peaks = append(peaks, p)
		}
	}
	return peaks, nil
}

func bandpass(x []float64, order int, low, high, fs float64) ([]float64, error) {
	bp, err := dsp.CachedBandpass(order, low, high, fs)
	if err != nil {
		return nil, err
	}
	return bp.FiltFilt(x), nil
}

// gradient is the central difference in the interior and the one-sided
// difference at both ends.
func gradient(x []float64) []float64 {
	n := len(x)
	g := make([]float64, n)
	if n < 2 {
		return g
	}
	g[0] = x[1] - x[0]
	g[n-1] = x[n-1] - x[n-2]
	for i := 1; i < n-1; i++ {
		g[i] = (x[i+1] - x[i-1]) / 2
	}
	return g
}

// boxcar is a centered moving average of width w with zero padding, the same
// length as x.
func boxcar(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	if w < 1 {
		copy(out, x)
		return out
	}
	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	half := w / 2
	for i := range out {
		lo := max(i-half, 0)
		hi := min(i-half+w, len(x))
		out[i] = (prefix[hi] - prefix[lo]) / float64(w)
	}
	return out
}
