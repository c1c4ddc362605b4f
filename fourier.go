package gocircular

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

const (
	// normZeroTol is the smallest normalizing integral accepted at
	// construction.
	normZeroTol = 1e-200
	// renormTol is the deviation from unit integral tolerated without
	// rescaling the coefficients.
	renormTol = 1e-10
	// logFloor is the smallest density value fed to a logarithm.
	logFloor = 1e-300
)

// FourierDensity approximates a circular density by a truncated Fourier
// series of an encoding of it:
//
//	s(θ) = a0/2 + Σ_k a_k·cos(kθ) + b_k·sin(kθ)
//
// where s is the density itself (Identity), its square root (Sqrt) or its
// natural logarithm (Log). Sqrt is the workhorse encoding: squaring the
// series keeps the density non-negative and doubles the harmonics exactly.
// Values are immutable; every operation returns a new one.
type FourierDensity struct {
	a   []float64
	b   []float64
	enc Encoding
}

// NewFourierDensity builds a density from series coefficients a (length
// m+1, DC term first) and b (length m) of the encoded density and
// normalizes it to unit integral. Identity and Sqrt normalize in closed
// form and only touch the coefficients when the integral is further than
// renormTol from 1, which is reported with a non-fatal Warning. Log has no
// closed form and always normalizes numerically on a grid.
func NewFourierDensity(a, b []float64, enc Encoding) (FourierDensity, error) {
	if len(a) < 1 {
		return FourierDensity{}, fmt.Errorf("%w: coefficient vector a must hold at least the DC term", ErrValidation)
	}
	if len(b) != len(a)-1 {
		return FourierDensity{}, fmt.Errorf("%w: len(b)=%d must equal len(a)-1=%d", ErrValidation, len(b), len(a)-1)
	}
	for i, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FourierDensity{}, fmt.Errorf("%w: a[%d]=%g is not finite", ErrValidation, i, v)
		}
	}
	for i, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FourierDensity{}, fmt.Errorf("%w: b[%d]=%g is not finite", ErrValidation, i, v)
		}
	}
	ca := append([]float64(nil), a...)
	cb := append([]float64(nil), b...)
	switch enc {
	case Identity:
		integral := math.Pi * ca[0]
		if math.IsNaN(integral) || integral < normZeroTol {
			return FourierDensity{}, fmt.Errorf("%w: integral %g", ErrNormalization, integral)
		}
		if math.Abs(integral-1) <= renormTol {
			return FourierDensity{ca, cb, enc}, nil
		}
		floats.Scale(1/integral, ca)
		floats.Scale(1/integral, cb)
		return FourierDensity{ca, cb, enc}, warnf("NewFourierDensity", "renormalized from integral %g", integral)
	case Sqrt:
		// Parseval: the integral of the squared series needs no grid.
		integral := ca[0] * ca[0] / 2
		for k := 1; k < len(ca); k++ {
			integral += ca[k]*ca[k] + cb[k-1]*cb[k-1]
		}
		integral *= math.Pi
		if math.IsNaN(integral) || integral < normZeroTol {
			return FourierDensity{}, fmt.Errorf("%w: integral %g", ErrNormalization, integral)
		}
		if math.Abs(integral-1) <= renormTol {
			return FourierDensity{ca, cb, enc}, nil
		}
		scale := 1 / math.Sqrt(integral)
		floats.Scale(scale, ca)
		floats.Scale(scale, cb)
		return FourierDensity{ca, cb, enc}, warnf("NewFourierDensity", "renormalized from integral %g", integral)
	case Log:
		// exp(s) has no closed-form integral. Log-sum-exp on a grid keeps
		// large normalizers finite.
		fd := FourierDensity{ca, cb, enc}
		n := fitGrid(fd.CoeffCount())
		grid := closedGrid(n)
		svals := fd.series(grid)
		smax := floats.Max(svals)
		for i, s := range svals {
			svals[i] = math.Exp(s - smax)
		}
		raw := integrate.Trapezoidal(grid, svals)
		if math.IsNaN(raw) || raw < normZeroTol {
			return FourierDensity{}, fmt.Errorf("%w: integral exp(%g)·%g", ErrNormalization, smax, raw)
		}
		ca[0] -= 2 * (smax + math.Log(raw))
		return FourierDensity{ca, cb, enc}, warnf("NewFourierDensity", "normalized numerically on a %d-point grid", n)
	}
	return FourierDensity{}, fmt.Errorf("%w: unknown encoding %d", ErrUnsupported, enc)
}

// NewUniformFourier returns the circular uniform density in the given
// encoding. All harmonics are zero, so it is exact for any coefficient
// count.
func NewUniformFourier(coeffCount int, enc Encoding) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	m := (coeffCount - 1) / 2
	a := make([]float64, m+1)
	b := make([]float64, m)
	switch enc {
	case Identity:
		a[0] = 1 / math.Pi
	case Sqrt:
		a[0] = 2 / math.Sqrt(2*math.Pi)
	case Log:
		a[0] = -2 * math.Log(2*math.Pi)
	default:
		return FourierDensity{}, fmt.Errorf("NewUniformFourier: %w: unknown encoding %d", ErrUnsupported, enc)
	}
	return FourierDensity{a, b, enc}, nil
}

// Coefficients returns copies of the cosine and sine coefficient vectors.
func (d FourierDensity) Coefficients() (a, b []float64) {
	return append([]float64(nil), d.a...), append([]float64(nil), d.b...)
}

// Encoding returns which transformation of the density the series encodes.
func (d FourierDensity) Encoding() Encoding {
	return d.enc
}

// CoeffCount returns the total number of stored coefficients, always odd.
func (d FourierDensity) CoeffCount() int {
	return len(d.a) + len(d.b)
}

// String implements the Stringer interface.
func (d FourierDensity) String() string {
	return fmt.Sprintf("Fourier{%v, n=%d}", d.enc, d.CoeffCount())
}

// series evaluates the raw trigonometric series at each angle.
func (d FourierDensity) series(angles []float64) []float64 {
	out := make([]float64, len(angles))
	for i, θ := range angles {
		v := d.a[0] / 2
		for k := 1; k < len(d.a); k++ {
			s, c := math.Sincos(float64(k) * θ)
			v += d.a[k]*c + d.b[k-1]*s
		}
		out[i] = v
	}
	return out
}

// PDF implements the Density interface by decoding the series pointwise.
// Identity densities may dip slightly below zero near sharp features; the
// values are returned unclamped.
func (d FourierDensity) PDF(angles []float64) []float64 {
	vals := d.series(angles)
	switch d.enc {
	case Sqrt:
		for i, v := range vals {
			vals[i] = v * v
		}
	case Log:
		for i, v := range vals {
			vals[i] = math.Exp(v)
		}
	}
	return vals
}

// coeffComplex returns the complex series coefficient c_k, zero beyond the
// stored range. c_0 = a_0/2, c_k = (a_k - i·b_k)/2, c_{-k} = conj(c_k).
func (d FourierDensity) coeffComplex(k int) complex128 {
	neg := k < 0
	if neg {
		k = -k
	}
	if k >= len(d.a) {
		return 0
	}
	var c complex128
	if k == 0 {
		c = complex(d.a[0]/2, 0)
	} else {
		c = complex(d.a[k]/2, -d.b[k-1]/2)
	}
	if neg {
		return cmplx.Conj(c)
	}
	return c
}

// spectrum returns the centered complex coefficients c_{-m}..c_m.
func (d FourierDensity) spectrum() []complex128 {
	m := len(d.b)
	spec := make([]complex128, 2*m+1)
	for k := -m; k <= m; k++ {
		spec[m+k] = d.coeffComplex(k)
	}
	return spec
}

// spectrumToSeries converts centered complex coefficients back to cosine
// and sine vectors.
func spectrumToSeries(spec []complex128) (a, b []float64) {
	m := (len(spec) - 1) / 2
	a = make([]float64, m+1)
	b = make([]float64, m)
	a[0] = 2 * real(spec[m])
	for k := 1; k <= m; k++ {
		a[k] = 2 * real(spec[m+k])
		b[k-1] = -2 * imag(spec[m+k])
	}
	return a, b
}

// convolveSpectra returns the full linear convolution of two centered
// spectra, itself centered. Pointwise products of series are convolutions
// of their spectra.
func convolveSpectra(f, g []complex128) []complex128 {
	out := make([]complex128, len(f)+len(g)-1)
	for i, fv := range f {
		for j, gv := range g {
			out[i+j] += fv * gv
		}
	}
	return out
}

// squared returns the Identity series of the squared density. For a
// normalized Sqrt density this is exact and keeps unit integral.
func (d FourierDensity) squared() FourierDensity {
	spec := d.spectrum()
	a, b := spectrumToSeries(convolveSpectra(spec, spec))
	return FourierDensity{a, b, Identity}
}

// Integral returns ∫_from^to of the density. Identity integrates the
// series termwise, Sqrt integrates its squared series, Log has no closed
// form and is rejected. Bounds may be in any order and span multiple
// periods.
func (d FourierDensity) Integral(from, to float64) (float64, error) {
	switch d.enc {
	case Identity:
		v := d.a[0] * (to - from) / 2
		for k := 1; k < len(d.a); k++ {
			κ := float64(k)
			v += d.a[k] * (math.Sin(κ*to) - math.Sin(κ*from)) / κ
			v -= d.b[k-1] * (math.Cos(κ*to) - math.Cos(κ*from)) / κ
		}
		return v, nil
	case Sqrt:
		return d.squared().Integral(from, to)
	}
	return 0, fmt.Errorf("Integral: %w: no closed form for log encoding", ErrUnsupported)
}

// IntegralFull returns the integral over one full period.
func (d FourierDensity) IntegralFull() (float64, error) {
	return d.Integral(0, 2*math.Pi)
}

// TrigonometricMoment implements the Noise interface. For Identity the
// moment is read off the coefficients, m_n = π·(a_n + i·b_n); harmonics
// beyond the stored range are zero. Sqrt uses its squared series, Log is
// rejected.
func (d FourierDensity) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	if n < 0 {
		m, err := d.TrigonometricMoment(-n)
		return cmplx.Conj(m), err
	}
	switch d.enc {
	case Identity:
		if n >= len(d.a) {
			return 0, nil
		}
		return complex(math.Pi*d.a[n], math.Pi*d.b[n-1]), nil
	case Sqrt:
		return d.squared().TrigonometricMoment(n)
	}
	return 0, fmt.Errorf("TrigonometricMoment: %w: no closed form for log encoding", ErrUnsupported)
}

// Multiply returns the renormalized pointwise product of two densities in
// the same encoding, the Bayes update of a prior with a likelihood. The
// harmonic count grows to the sum of both inputs; truncate afterwards.
// Identity and Sqrt renormalize and warn; Log adds coefficients and leaves
// the normalizer stale, which its consumers correct on decode.
func (d FourierDensity) Multiply(other FourierDensity) (FourierDensity, error) {
	if d.enc != other.enc {
		return FourierDensity{}, fmt.Errorf("Multiply: %w: encodings %v and %v differ", ErrValidation, d.enc, other.enc)
	}
	if d.enc == Log {
		la := max(len(d.a), len(other.a))
		a := make([]float64, la)
		b := make([]float64, la-1)
		for i := range a {
			if i < len(d.a) {
				a[i] += d.a[i]
			}
			if i < len(other.a) {
				a[i] += other.a[i]
			}
		}
		for i := range b {
			if i < len(d.b) {
				b[i] += d.b[i]
			}
			if i < len(other.b) {
				b[i] += other.b[i]
			}
		}
		return FourierDensity{a, b, Log}, warnf("Multiply", "log product is not renormalized")
	}
	a, b := spectrumToSeries(convolveSpectra(d.spectrum(), other.spectrum()))
	prod, err := NewFourierDensity(a, b, d.enc)
	if err != nil && !IsWarning(err) {
		return FourierDensity{}, err
	}
	return prod, warnf("Multiply", "product renormalized to unit integral")
}

// Convolve returns the circular convolution of two densities in the same
// encoding, truncated to coeffCount coefficients: the prediction step that
// adds independent noise to a state. Identity is exact and stays
// normalized. Sqrt squares both sides, convolves exactly and refits the
// square root on a grid. Log decodes both sides and convolves on a grid by
// FFT.
func (d FourierDensity) Convolve(other FourierDensity, coeffCount int) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	if d.enc != other.enc {
		return FourierDensity{}, fmt.Errorf("Convolve: %w: encodings %v and %v differ", ErrValidation, d.enc, other.enc)
	}
	switch d.enc {
	case Identity:
		return convolveIdentity(d, other, coeffCount), nil
	case Sqrt:
		sq, oq := d.squared(), other.squared()
		ident := convolveIdentity(sq, oq, max(sq.CoeffCount(), oq.CoeffCount()))
		n := fitGrid(max(coeffCount, ident.CoeffCount()))
		vals := ident.PDF(uniformGrid(n))
		return fourierFromValues(vals, coeffCount, Sqrt, "Convolve")
	}
	n := fitGrid(max(d.CoeffCount(), other.CoeffCount(), coeffCount))
	grid := uniformGrid(n)
	fv := d.PDF(grid)
	gv := other.PDF(grid)
	fft := fourier.NewFFT(n)
	fc := fft.Coefficients(nil, fv)
	gc := fft.Coefficients(nil, gv)
	for i := range fc {
		fc[i] *= gc[i]
	}
	hv := fft.Sequence(nil, fc)
	// Sequence is unnormalized (gain n) and the Riemann sum carries 2π/n.
	scale := 2 * math.Pi / (float64(n) * float64(n))
	floats.Scale(scale, hv)
	return fourierFromValues(hv, coeffCount, Log, "Convolve")
}

// convolveIdentity convolves two Identity densities termwise:
// (f∗g)_k = 2π·f_k·g_k. Exact, and exactly normalized when the inputs are.
func convolveIdentity(f, g FourierDensity, coeffCount int) FourierDensity {
	m := (coeffCount - 1) / 2
	a := make([]float64, m+1)
	b := make([]float64, m)
	for k := 0; k <= m; k++ {
		c := complex(2*math.Pi, 0) * f.coeffComplex(k) * g.coeffComplex(k)
		if k == 0 {
			a[0] = 2 * real(c)
		} else {
			a[k] = 2 * real(c)
			b[k-1] = -2 * imag(c)
		}
	}
	return FourierDensity{a, b, Identity}
}

// Truncate resizes the series to coeffCount coefficients, trimming high
// harmonics or zero-padding, and renormalizes when trimming moved the
// integral.
func (d FourierDensity) Truncate(coeffCount int) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	m := (coeffCount - 1) / 2
	a := make([]float64, m+1)
	b := make([]float64, m)
	copy(a, d.a)
	copy(b, d.b)
	return NewFourierDensity(a, b, d.enc)
}

// Transform re-encodes the density. Conversions with a closed form are
// exact up to truncation: same encoding is a Truncate, Sqrt to Identity is
// a squaring. A three-coefficient target fits a moment-matched von Mises
// instead, which beats a three-term grid fit. Everything else decodes the
// density on a grid and refits, reported with a Warning.
func (d FourierDensity) Transform(target Encoding, coeffCount int) (FourierDensity, error) {
	if !validEncoding(target) {
		return FourierDensity{}, fmt.Errorf("Transform: %w: unknown encoding %d", ErrUnsupported, target)
	}
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	if target == d.enc {
		return d.Truncate(coeffCount)
	}
	if d.enc == Sqrt && target == Identity {
		return d.squared().Truncate(coeffCount)
	}
	if coeffCount == 3 && d.enc != Log {
		if fd, ok, err := d.transformViaVonMises(target, coeffCount); ok {
			return fd, err
		}
	}
	n := fitGrid(max(coeffCount, d.CoeffCount()))
	vals := d.PDF(uniformGrid(n))
	return fourierFromValues(vals, coeffCount, target, "Transform")
}

// transformViaVonMises fits a von Mises to the first trigonometric moment
// and emits its analytic coefficients. ok is false when the moment is not
// available or not admissible, in which case the caller falls back to a
// grid fit.
func (d FourierDensity) transformViaVonMises(target Encoding, coeffCount int) (FourierDensity, bool, error) {
	m1, err := d.TrigonometricMoment(1)
	if err != nil {
		return FourierDensity{}, false, nil
	}
	vm, err := VonMisesFromMoment(m1)
	if err != nil {
		return FourierDensity{}, false, nil
	}
	a, b, ok := vm.FourierCoefficients(target, coeffCount)
	if !ok {
		return FourierDensity{}, false, nil
	}
	fd, err := NewFourierDensity(a, b, target)
	if err != nil && !IsWarning(err) {
		return FourierDensity{}, true, err
	}
	return fd, true, errors.Join(err, warnf("Transform", "moment-matched von Mises approximation"))
}

// Shift rotates the density by angle: the result is f(θ-angle). Exact in
// every encoding, since rotation commutes with the pointwise decode.
func (d FourierDensity) Shift(angle float64) FourierDensity {
	a := make([]float64, len(d.a))
	b := make([]float64, len(d.b))
	a[0] = d.a[0]
	for k := 1; k < len(d.a); k++ {
		s, c := math.Sincos(float64(k) * angle)
		a[k] = d.a[k]*c - d.b[k-1]*s
		b[k-1] = d.a[k]*s + d.b[k-1]*c
	}
	return FourierDensity{a, b, d.enc}
}

// FourierFromMoments builds an exactly normalized Identity density from
// the trigonometric moments of src: a_k = Re(m_k)/π, b_k = Im(m_k)/π.
func FourierFromMoments(src Noise, coeffCount int) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	m := (coeffCount - 1) / 2
	a := make([]float64, m+1)
	b := make([]float64, m)
	a[0] = 1 / math.Pi
	for k := 1; k <= m; k++ {
		mk, err := src.TrigonometricMoment(k)
		if err != nil {
			return FourierDensity{}, err
		}
		a[k] = real(mk) / math.Pi
		b[k-1] = imag(mk) / math.Pi
	}
	return FourierDensity{a, b, Identity}, nil
}

// FourierFromFunction fits a density to a non-negative function of angle,
// sampled on a grid. The function does not need to be normalized. Used to
// turn measurement likelihoods into densities.
func FourierFromFunction(f func(float64) float64, coeffCount int, enc Encoding) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	if !validEncoding(enc) {
		return FourierDensity{}, fmt.Errorf("FourierFromFunction: %w: unknown encoding %d", ErrUnsupported, enc)
	}
	grid := uniformGrid(fitGrid(coeffCount))
	vals := make([]float64, len(grid))
	for i, θ := range grid {
		v := f(θ)
		if v < 0 || math.IsNaN(v) {
			return FourierDensity{}, fmt.Errorf("FourierFromFunction: %w: value %g at θ=%g must be non-negative", ErrValidation, v, θ)
		}
		vals[i] = v
	}
	return fourierFromValues(vals, coeffCount, enc, "FourierFromFunction")
}

// FourierFromDensity approximates an arbitrary circular density. Analytic
// coefficients are used when the family provides them, then Identity
// targets read the trigonometric moments off the source, and the general
// fallback fits the encoded density on a grid.
func FourierFromDensity(src Density, coeffCount int, enc Encoding) (FourierDensity, error) {
	if err := checkCoeffCount(coeffCount); err != nil {
		return FourierDensity{}, err
	}
	if !validEncoding(enc) {
		return FourierDensity{}, fmt.Errorf("FourierFromDensity: %w: unknown encoding %d", ErrUnsupported, enc)
	}
	if cs, ok := src.(CoefficientSource); ok {
		if a, b, ok := cs.FourierCoefficients(enc, coeffCount); ok {
			return NewFourierDensity(a, b, enc)
		}
	}
	if enc == Identity {
		if fd, err := FourierFromMoments(src, coeffCount); err == nil {
			return fd, nil
		}
	}
	vals := src.PDF(uniformGrid(fitGrid(coeffCount)))
	return fourierFromValues(vals, coeffCount, enc, "FourierFromDensity")
}

// fourierFromValues encodes density values sampled on a uniform grid, fits
// the series and normalizes. Grid fits always carry a Warning.
func fourierFromValues(vals []float64, coeffCount int, enc Encoding, op string) (FourierDensity, error) {
	applyEncoding(vals, enc)
	a, b := fitSeries(vals, coeffCount)
	fd, err := NewFourierDensity(a, b, enc)
	if err != nil && !IsWarning(err) {
		return FourierDensity{}, err
	}
	return fd, errors.Join(err, warnf(op, "fit on a %d-point grid", len(vals)))
}

// applyEncoding maps density values to encoded series values in place,
// clamping the negative spill of upstream truncations.
func applyEncoding(vals []float64, enc Encoding) {
	switch enc {
	case Sqrt:
		for i, v := range vals {
			if v < 0 {
				v = 0
			}
			vals[i] = math.Sqrt(v)
		}
	case Log:
		for i, v := range vals {
			if v < logFloor {
				v = logFloor
			}
			vals[i] = math.Log(v)
		}
	}
}

// fitSeries computes the leading series coefficients of values sampled on
// uniformGrid(len(values)) by FFT. The DFT is unnormalized, so c_k = C_k/n.
func fitSeries(values []float64, coeffCount int) (a, b []float64) {
	n := len(values)
	coeffs := fourier.NewFFT(n).Coefficients(nil, values)
	m := (coeffCount - 1) / 2
	a = make([]float64, m+1)
	b = make([]float64, m)
	scale := 2 / float64(n)
	a[0] = scale * real(coeffs[0])
	for k := 1; k <= m; k++ {
		a[k] = scale * real(coeffs[k])
		b[k-1] = -scale * imag(coeffs[k])
	}
	return a, b
}

// fitGrid returns the sampling size for grid-based refits: a power of two
// no smaller than 256 that resolves every requested harmonic.
func fitGrid(count int) int {
	n := nextPow2(count)
	if n < 256 {
		n = 256
	}
	return n
}

// validEncoding reports whether enc is one of the three defined encodings.
func validEncoding(enc Encoding) bool {
	switch enc {
	case Identity, Sqrt, Log:
		return true
	}
	return false
}
