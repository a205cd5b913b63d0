// Package dsp provides the filtering and spectral primitives used by the
// waveform composers and feature extractors.
//
// Band-pass filters are Butterworth designs realised as cascaded second-order
// sections and applied forward-backward, so filtered output keeps the sample
// alignment of its input.
package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// ErrFilterDesign matches any *FilterDesignError.
var ErrFilterDesign = errors.New("filter design error")

// FilterDesignError reports band edges that cannot be realised at a sampling rate.
type FilterDesignError struct {
	Low        float64
	High       float64
	SampleRate float64
	Reason     string
}

func (e *FilterDesignError) Error() string {
	return fmt.Sprintf("filter design: band [%g, %g] Hz at %g Hz: %s", e.Low, e.High, e.SampleRate, e.Reason)
}

func (e *FilterDesignError) Is(target error) bool { return target == ErrFilterDesign }

// Section is one biquad in transposed direct form II. A[0] is always 1.
type Section struct {
	B [3]float64
	A [3]float64
}

// Bandpass is a Butterworth band-pass filter.
type Bandpass struct {
	Order    int
	Low      float64
	High     float64
	Rate     float64
	Sections []Section
}

// ButterBandpass designs an order-N Butterworth band-pass filter for the band
// [low, high] Hz at sample rate fs. The result has N sections (2N poles).
// Band edges must satisfy 0 < low < high < fs/2.
func ButterBandpass(order int, low, high, fs float64) (*Bandpass, error) {
	if err := checkBand(low, high, fs); err != nil {
		return nil, err
	}
	if order < 1 {
		return nil, &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "order must be >= 1"}
	}

	// Pre-warp the band edges for the bilinear transform.
	w1 := 2 * fs * math.Tan(math.Pi*low/fs)
	w2 := 2 * fs * math.Tan(math.Pi*high/fs)
	bw := w2 - w1
	w0 := math.Sqrt(w1 * w2)

	// Analog low-pass prototype poles, shifted to band-pass, then mapped to z.
	fs2 := complex(2*fs, 0)
	poles := make([]complex128, 0, 2*order)
	for k := 0; k < order; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		p := cmplx.Rect(1, theta)
		a := p * complex(bw/2, 0)
		d := cmplx.Sqrt(a*a - complex(w0*w0, 0))
		for _, s := range []complex128{a + d, a - d} {
			poles = append(poles, (fs2+s)/(fs2-s))
		}
	}

	sections, err := pairSections(poles, order)
	if err != nil {
		return nil, &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: err.Error()}
	}

	// Unity gain at the digital image of the analog centre frequency.
	center := 2 * math.Atan(w0/(2*fs))
	g := cmplx.Abs(response(sections, center))
	if g == 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "degenerate gain"}
	}
	for i := range sections[0].B {
		sections[0].B[i] /= g
	}

	return &Bandpass{Order: order, Low: low, High: high, Rate: fs, Sections: sections}, nil
}

func checkBand(low, high, fs float64) error {
	for _, v := range []float64{low, high, fs} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "non-finite parameter"}
		}
	}
	switch {
	case fs <= 0:
		return &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "sample rate must be > 0"}
	case low <= 0:
		return &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "low edge must be > 0"}
	case high <= low:
		return &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: "high edge must exceed low edge"}
	case high >= fs/2:
		return &FilterDesignError{Low: low, High: high, SampleRate: fs, Reason: fmt.Sprintf("high edge must be below Nyquist (%g Hz)", fs/2)}
	}
	return nil
}

// pairSections groups 2N digital poles into N conjugate (or real) pairs. Each
// section carries one zero at z=1 and one at z=-1.
func pairSections(poles []complex128, order int) ([]Section, error) {
	const eps = 1e-12
	var upper, reals []complex128
	for _, p := range poles {
		switch {
		case imag(p) > eps:
			upper = append(upper, p)
		case imag(p) < -eps:
			// conjugate of an upper pole
		default:
			reals = append(reals, complex(real(p), 0))
		}
	}
	if len(reals)%2 != 0 || len(upper)+len(reals)/2 != order {
		return nil, fmt.Errorf("unpaired poles")
	}
	sort.Slice(reals, func(i, j int) bool { return cmplx.Abs(reals[i]) < cmplx.Abs(reals[j]) })

	sections := make([]Section, 0, order)
	for _, p := range upper {
		sections = append(sections, Section{
			B: [3]float64{1, 0, -1},
			A: [3]float64{1, -2 * real(p), real(p)*real(p) + imag(p)*imag(p)},
		})
	}
	for i := 0; i < len(reals); i += 2 {
		p1, p2 := real(reals[i]), real(reals[i+1])
		sections = append(sections, Section{
			B: [3]float64{1, 0, -1},
			A: [3]float64{1, -(p1 + p2), p1 * p2},
		})
	}
	return sections, nil
}

// response evaluates the cascade's frequency response at w radians/sample.
func response(sections []Section, w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	h := complex(1, 0)
	for _, s := range sections {
		num := complex(s.B[0], 0) + complex(s.B[1], 0)*z1 + complex(s.B[2], 0)*z2
		den := complex(1, 0) + complex(s.A[1], 0)*z1 + complex(s.A[2], 0)*z2
		h *= num / den
	}
	return h
}

// Response returns the filter gain at frequency f Hz.
func (f *Bandpass) Response(freq float64) float64 {
	return cmplx.Abs(response(f.Sections, 2*math.Pi*freq/f.Rate))
}
