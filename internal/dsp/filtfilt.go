package dsp

// Filter runs the cascade once, forward, starting from rest.
func (f *Bandpass) Filter(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	for _, s := range f.Sections {
		s.run(y, 0, 0)
	}
	return y
}

// FiltFilt applies the filter forward and then backward, giving zero phase
// shift and squared magnitude response. The input is extended at both ends by
// odd reflection and each section starts from its steady-state response to the
// edge value, which keeps start-up transients out of the output.
func (f *Bandpass) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	padlen := 3 * (2*len(f.Sections) + 1)
	if padlen > n-1 {
		padlen = n - 1
	}
	ext := oddExtend(x, padlen)
	zi := f.steadyState()

	f.cascade(ext, zi, ext[0])
	reverse(ext)
	f.cascade(ext, zi, ext[0])
	reverse(ext)

	out := make([]float64, n)
	copy(out, ext[padlen:padlen+n])
	return out
}

func (f *Bandpass) cascade(x []float64, zi [][2]float64, x0 float64) {
	for i, s := range f.Sections {
		s.run(x, zi[i][0]*x0, zi[i][1]*x0)
	}
}

// steadyState returns per-section initial states for a unit step input at the
// head of the cascade.
func (f *Bandpass) steadyState() [][2]float64 {
	zi := make([][2]float64, len(f.Sections))
	scale := 1.0
	for i, s := range f.Sections {
		dc := (s.B[0] + s.B[1] + s.B[2]) / (s.A[0] + s.A[1] + s.A[2])
		y := dc
		z2 := s.B[2] - s.A[2]*y
		z1 := s.B[1] - s.A[1]*y + z2
		zi[i] = [2]float64{z1 * scale, z2 * scale}
		scale *= dc
	}
	return zi
}

func (s Section) run(x []float64, z1, z2 float64) {
	for i, v := range x {
		y := s.B[0]*v + z1
		z1 = s.B[1]*v - s.A[1]*y + z2
		z2 = s.B[2]*v - s.A[2]*y
		x[i] = y
	}
}

func oddExtend(x []float64, padlen int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*padlen)
	first, last := x[0], x[n-1]
	for i := 0; i < padlen; i++ {
		ext[i] = 2*first - x[padlen-i]
		ext[padlen+n+i] = 2*last - x[n-2-i]
	}
	copy(ext[padlen:], x)
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
