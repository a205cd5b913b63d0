package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// DefaultSegment is the Welch segment length used when the signal is long enough.
const DefaultSegment = 256

// Spectrum is a one-sided power spectral density estimate.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// Welch estimates the power spectral density of x sampled at fs Hz.
//
// Segments of nperseg samples (clamped to len(x); DefaultSegment when
// nperseg <= 0) overlap by half, are mean-detrended and Hann-windowed, and
// their periodograms are averaged. Power is density-scaled (units²/Hz).
func Welch(x []float64, fs float64, nperseg int) (Spectrum, error) {
	if len(x) < 2 {
		return Spectrum{}, fmt.Errorf("welch: need at least 2 samples, got %d", len(x))
	}
	if fs <= 0 {
		return Spectrum{}, fmt.Errorf("welch: sample rate must be > 0")
	}
	if nperseg <= 0 {
		nperseg = DefaultSegment
	}
	if nperseg > len(x) {
		nperseg = len(x)
	}
	step := nperseg - nperseg/2

	window := hann(nperseg)
	var wss float64
	for _, w := range window {
		wss += w * w
	}
	scale := 1 / (fs * wss)

	fft := fourier.NewFFT(nperseg)
	nfreq := nperseg/2 + 1
	power := make([]float64, nfreq)
	seg := make([]float64, nperseg)
	var coeffs []complex128
	segments := 0

	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])
		mean := stat.Mean(seg, nil)
		for i := range seg {
			seg[i] = (seg[i] - mean) * window[i]
		}
		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			power[k] += real(c)*real(c) + imag(c)*imag(c)
		}
		segments++
	}

	// One-sided: fold negative frequencies except DC and (even length) Nyquist.
	last := nfreq
	if nperseg%2 == 0 {
		last = nfreq - 1
	}
	freqs := make([]float64, nfreq)
	for k := range power {
		power[k] *= scale / float64(segments)
		if k > 0 && k < last {
			power[k] *= 2
		}
		freqs[k] = float64(k) * fs / float64(nperseg)
	}

	return Spectrum{Freqs: freqs, Power: power}, nil
}

// BandPower integrates the spectrum over [low, high] Hz with the trapezoid
// rule, using only bins that fall inside the band. Fewer than two bins give 0.
func (s Spectrum) BandPower(low, high float64) float64 {
	var f, p []float64
	for i, freq := range s.Freqs {
		if freq >= low && freq <= high {
			f = append(f, freq)
			p = append(p, s.Power[i])
		}
	}
	if len(f) < 2 {
		return 0
	}
	v := integrate.Trapezoidal(f, p)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// hann returns the periodic Hann window used for spectral estimation.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
