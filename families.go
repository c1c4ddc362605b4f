package gocircular

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// CircularUniform is the uniform density on the circle. It is the fixed
// point of convolution and the zero-information belief.
type CircularUniform struct{}

// PDF implements the Density interface.
func (CircularUniform) PDF(angles []float64) []float64 {
	out := make([]float64, len(angles))
	for i := range out {
		out[i] = 1 / (2 * math.Pi)
	}
	return out
}

// TrigonometricMoment implements the Noise interface. Every harmonic
// vanishes.
func (CircularUniform) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	return 0, nil
}

// Sample implements the Sampler interface.
func (CircularUniform) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	src := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	out := make([]float64, count)
	for i := range out {
		out[i] = src.Rand()
	}
	return out
}

// FourierCoefficients implements the CoefficientSource interface.
func (CircularUniform) FourierCoefficients(enc Encoding, coeffCount int) (a, b []float64, ok bool) {
	fd, err := NewUniformFourier(coeffCount, enc)
	if err != nil {
		return nil, nil, false
	}
	a, b = fd.Coefficients()
	return a, b, true
}

// String implements the Stringer interface.
func (CircularUniform) String() string {
	return "CircularUniform"
}

// PiecewiseConstant is a histogram density: len(weights) equal bins over
// [0, 2π), the i-th covering [i·Δ, (i+1)·Δ) with constant value w_i/Δ.
type PiecewiseConstant struct {
	weights []float64
	cum     []float64
}

// NewPiecewiseConstant builds a histogram density from non-negative bin
// weights, normalized to sum 1.
func NewPiecewiseConstant(weights []float64) (PiecewiseConstant, error) {
	if len(weights) == 0 {
		return PiecewiseConstant{}, fmt.Errorf("NewPiecewiseConstant: %w: weights must not be empty", ErrValidation)
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return PiecewiseConstant{}, fmt.Errorf("NewPiecewiseConstant: %w: weight[%d]=%g must be non-negative", ErrValidation, i, w)
		}
	}
	total := floats.Sum(weights)
	if total < 1e-290 || math.IsInf(total, 0) {
		return PiecewiseConstant{}, fmt.Errorf("NewPiecewiseConstant: %w: weight total %g", ErrDegenerateWeights, total)
	}
	w := append([]float64(nil), weights...)
	floats.Scale(1/total, w)
	return PiecewiseConstant{w, cumulativeWeights(w)}, nil
}

// Len returns the number of bins.
func (p PiecewiseConstant) Len() int {
	return len(p.weights)
}

// PDF implements the Density interface by bin lookup.
func (p PiecewiseConstant) PDF(angles []float64) []float64 {
	n := len(p.weights)
	width := 2 * math.Pi / float64(n)
	out := make([]float64, len(angles))
	for i, θ := range angles {
		bin := int(WrapTo2Pi(θ) / width)
		if bin >= n {
			bin = n - 1
		}
		out[i] = p.weights[bin] / width
	}
	return out
}

// TrigonometricMoment implements the Noise interface. Each bin integrates
// to e^{in·iΔ}·(e^{inΔ}-1)/(inΔ) times its weight.
func (p PiecewiseConstant) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	Δ := 2 * math.Pi / float64(len(p.weights))
	nΔ := float64(n) * Δ
	factor := (cmplx.Exp(complex(0, nΔ)) - 1) / complex(0, nΔ)
	var m complex128
	for i, w := range p.weights {
		s, c := math.Sincos(nΔ * float64(i))
		m += complex(w*c, w*s)
	}
	return m * factor, nil
}

// Sample implements the Sampler interface: a bin by inverse CDF, then a
// uniform offset inside it.
func (p PiecewiseConstant) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	width := 2 * math.Pi / float64(len(p.weights))
	total := p.cum[len(p.cum)-1]
	out := make([]float64, count)
	for i := range out {
		bin := searchCum(p.cum, rng.Float64()*total)
		out[i] = (float64(bin) + rng.Float64()) * width
	}
	return out
}

// String implements the Stringer interface.
func (p PiecewiseConstant) String() string {
	return fmt.Sprintf("PiecewiseConstant{bins=%d}", len(p.weights))
}

// Mixture is a convex combination of circular densities.
type Mixture struct {
	components []Density
	weights    []float64
	cum        []float64
}

// NewMixture builds a mixture from components and their non-negative
// weights, normalized to sum 1.
func NewMixture(components []Density, weights []float64) (Mixture, error) {
	if len(components) == 0 {
		return Mixture{}, fmt.Errorf("NewMixture: %w: components must not be empty", ErrValidation)
	}
	if len(components) != len(weights) {
		return Mixture{}, fmt.Errorf("NewMixture: %w: len(components)=%d must equal len(weights)=%d", ErrValidation, len(components), len(weights))
	}
	for i, c := range components {
		if c == nil {
			return Mixture{}, fmt.Errorf("NewMixture: %w: component[%d] is nil", ErrValidation, i)
		}
		if weights[i] < 0 || math.IsNaN(weights[i]) {
			return Mixture{}, fmt.Errorf("NewMixture: %w: weight[%d]=%g must be non-negative", ErrValidation, i, weights[i])
		}
	}
	total := floats.Sum(weights)
	if total < 1e-290 || math.IsInf(total, 0) {
		return Mixture{}, fmt.Errorf("NewMixture: %w: weight total %g", ErrDegenerateWeights, total)
	}
	w := append([]float64(nil), weights...)
	floats.Scale(1/total, w)
	comps := append([]Density(nil), components...)
	return Mixture{comps, w, cumulativeWeights(w)}, nil
}

// Len returns the number of components.
func (m Mixture) Len() int {
	return len(m.components)
}

// PDF implements the Density interface as the weighted sum of component
// densities.
func (m Mixture) PDF(angles []float64) []float64 {
	out := make([]float64, len(angles))
	for i, c := range m.components {
		for j, v := range c.PDF(angles) {
			out[j] += m.weights[i] * v
		}
	}
	return out
}

// TrigonometricMoment implements the Noise interface by linearity.
func (m Mixture) TrigonometricMoment(n int) (complex128, error) {
	var moment complex128
	for i, c := range m.components {
		mi, err := c.TrigonometricMoment(n)
		if err != nil {
			return 0, err
		}
		moment += complex(m.weights[i], 0) * mi
	}
	return moment, nil
}

// Sample implements the Sampler interface: a component by inverse CDF,
// then one draw from it. Panics when a selected component cannot sample,
// which is a construction mistake rather than a runtime condition.
func (m Mixture) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	total := m.cum[len(m.cum)-1]
	out := make([]float64, count)
	for i := range out {
		c := m.components[searchCum(m.cum, rng.Float64()*total)]
		s, ok := c.(Sampler)
		if !ok {
			panic(fmt.Errorf("gocircular: mixture component %T cannot be sampled", c))
		}
		out[i] = WrapTo2Pi(s.Sample(rng, 1)[0])
	}
	return out
}

// String implements the Stringer interface.
func (m Mixture) String() string {
	return fmt.Sprintf("Mixture{k=%d}", len(m.components))
}
