package ecg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/rcliao/biosynth/internal/dsp"
	"github.com/rcliao/biosynth/internal/model"
)

// ErrInsufficientBeats reports that too few R peaks were found for
// interval statistics.
var ErrInsufficientBeats = errors.New("insufficient beats for hrv analysis")

// MinPeaks is the fewest R peaks HRV analysis accepts.
const MinPeaks = 3

const resampleRate = 4.0 // Hz, for the RR tachogram

type hrvBand struct {
	name      string
	low, high float64
}

var hrvBands = []hrvBand{
	{"VLF", 0.0033, 0.04},
	{"LF", 0.04, 0.15},
	{"HF", 0.15, 0.4},
	{"VHF", 0.4, 0.5},
}

// ExtractHRV returns time- and frequency-domain variability statistics for a
// cardiac signal. Analysis failures are logged and yield an empty table.
func ExtractHRV(ctx context.Context, logger *slog.Logger, det Detector, sig *model.Signal) []model.Stat {
	stats, err := analyze(det, sig.Samples[0], sig.SamplingRate)
	if err != nil {
		logger.WarnContext(ctx, "hrv extraction failed",
			slog.String("pattern", sig.Pattern),
			slog.Int("samples", sig.Len()),
			slog.Any("error", err),
		)
		return []model.Stat{}
	}
	return stats
}

func analyze(det Detector, x []float64, fs int) ([]model.Stat, error) {
	peaks, err := det.Detect(x, fs)
	if err != nil {
		return nil, fmt.Errorf("detect peaks: %w", err)
	}
	if len(peaks) < MinPeaks {
		return nil, fmt.Errorf("%w: found %d peaks", ErrInsufficientBeats, len(peaks))
	}

	rate := float64(fs)
	rr := make([]float64, len(peaks)-1)    // ms
	times := make([]float64, len(peaks)-1) // s, at the closing peak
	for i := 1; i < len(peaks); i++ {
		rr[i-1] = float64(peaks[i]-peaks[i-1]) / rate * 1000
		times[i-1] = float64(peaks[i]) / rate
	}

	var out []model.Stat
	add := func(name string, v float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, model.Stat{Name: "HRV_" + name, Value: v})
		}
	}
	timeDomain(rr, add)
	if err := frequencyDomain(rr, times, add); err != nil {
		return nil, err
	}
	return out, nil
}

func timeDomain(rr []float64, add func(string, float64)) {
	diff := make([]float64, len(rr)-1)
	for i := range diff {
		diff[i] = rr[i+1] - rr[i]
	}
	sorted := slices.Clone(rr)
	slices.Sort(sorted)

	meanNN := stat.Mean(rr, nil)
	sdnn := stat.StdDev(rr, nil)
	var sq float64
	var nn50, nn20 int
	for _, d := range diff {
		sq += d * d
		if math.Abs(d) > 50 {
			nn50++
		}
		if math.Abs(d) > 20 {
			nn20++
		}
	}
	rmssd := math.Sqrt(sq / float64(len(diff)))
	median := percentile(sorted, 50)
	dev := make([]float64, len(rr))
	for i, v := range rr {
		dev[i] = math.Abs(v - median)
	}
	slices.Sort(dev)
	mad := 1.4826 * percentile(dev, 50)

	add("MeanNN", meanNN)
	add("SDNN", sdnn)
	add("RMSSD", rmssd)
	add("SDSD", stat.StdDev(diff, nil))
	add("CVNN", sdnn/meanNN)
	add("CVSD", rmssd/meanNN)
	add("MedianNN", median)
	add("MadNN", mad)
	add("MCVNN", mad/median)
	add("IQRNN", percentile(sorted, 75)-percentile(sorted, 25))
	add("pNN50", float64(nn50)/float64(len(rr))*100)
	add("pNN20", float64(nn20)/float64(len(rr))*100)
	add("MinNN", floats.Min(rr))
	add("MaxNN", floats.Max(rr))
}

// frequencyDomain resamples the tachogram at resampleRate and integrates its
// Welch spectrum over the HRV bands. Tachograms too short to resample add
// nothing.
func frequencyDomain(rr, times []float64, add func(string, float64)) error {
	var fit interp.FittablePredictor = &interp.FritschButland{}
	if len(rr) < 3 {
		fit = &interp.PiecewiseLinear{}
	}
	if len(rr) < 2 {
		return nil
	}
	if err := fit.Fit(times, rr); err != nil {
		return fmt.Errorf("interpolate rr: %w", err)
	}

	span := times[len(times)-1] - times[0]
	n := int(span*resampleRate) + 1
	if n < 4 {
		return nil
	}
	even := make([]float64, n)
	for i := range even {
		even[i] = fit.Predict(times[0] + float64(i)/resampleRate)
	}
	psd, err := dsp.Welch(even, resampleRate, dsp.DefaultSegment)
	if err != nil {
		return fmt.Errorf("rr spectrum: %w", err)
	}

	power := make(map[string]float64, len(hrvBands))
	var total float64
	for _, b := range hrvBands {
		p := psd.BandPower(b.low, b.high)
		power[b.name] = p
		total += p
	}
	for _, b := range hrvBands {
		add(b.name, power[b.name])
	}
	add("TP", total)
	add("LFHF", power["LF"]/power["HF"])
	add("LFn", power["LF"]/total)
	add("HFn", power["HF"]/total)
	add("LnHF", math.Log(power["HF"]))
	return nil
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}
