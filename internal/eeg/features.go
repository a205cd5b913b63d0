package eeg

import (
	"fmt"

	"github.com/rcliao/biosynth/internal/dsp"
	"github.com/rcliao/biosynth/internal/model"
)

// BandPowers estimates each channel's Welch spectrum and integrates it over
// Bands. Rows follow sig.Channels and columns follow Bands. A channel too
// short for a spectrum gets a zero row.
func BandPowers(sig *model.Signal) (*model.BandPower, error) {
	names := make([]string, len(Bands))
	for i, b := range Bands {
		names[i] = b.Name
	}
	out := &model.BandPower{
		Bands:    names,
		Channels: append([]string(nil), sig.Channels...),
		Power:    make([][]float64, len(sig.Samples)),
	}
	fs := float64(sig.SamplingRate)
	for ch, x := range sig.Samples {
		row := make([]float64, len(Bands))
		out.Power[ch] = row
		if len(x) < 2 {
			continue
		}
		psd, err := dsp.Welch(x, fs, dsp.DefaultSegment)
		if err != nil {
			return nil, fmt.Errorf("band power %s: %w", sig.Channels[ch], err)
		}
		for i, b := range Bands {
			row[i] = psd.BandPower(b.Low, b.High)
		}
	}
	return out, nil
}
