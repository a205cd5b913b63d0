// Package csvout renders generated signals and feature tables as CSV.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rcliao/biosynth/internal/model"
)

// ErrNoFeatures is returned when a feature set has nothing to write.
var ErrNoFeatures = errors.New("no features to write")

// WriteData writes one column per channel and one row per sample.
func WriteData(w io.Writer, sig *model.Signal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sig.Channels); err != nil {
		return err
	}
	row := make([]string, len(sig.Samples))
	for i := range sig.Len() {
		for ch, x := range sig.Samples {
			row[ch] = formatFloat(x[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFeatures writes band power as one row per channel, or HRV statistics
// as a single row. An empty feature set yields ErrNoFeatures and no output.
func WriteFeatures(w io.Writer, fs model.FeatureSet) error {
	if fs.Empty() {
		return ErrNoFeatures
	}
	cw := csv.NewWriter(w)
	if bp := fs.BandPower; bp != nil {
		if err := cw.Write(append([]string{"channel"}, bp.Bands...)); err != nil {
			return err
		}
		for ch, powers := range bp.Power {
			row := make([]string, 0, len(powers)+1)
			row = append(row, bp.Channels[ch])
			for _, p := range powers {
				row = append(row, formatFloat(p))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	} else {
		header := make([]string, len(fs.HRV))
		values := make([]string, len(fs.HRV))
		for i, s := range fs.HRV {
			header[i] = s.Name
			values[i] = formatFloat(s.Value)
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.Write(values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
