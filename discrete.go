package gocircular

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DiscreteDistribution is a finite weighted sample set on the circle: an
// ordered sequence of (position, weight) pairs with positions canonicalized
// into [0, 2π) and weights normalized to sum 1. Duplicate positions are
// permitted and never merged. Values are immutable; every operation returns
// a new one.
type DiscreteDistribution struct {
	support []float64
	weights []float64
	cum     []float64
}

// NewDiscreteDistribution builds a weighted sample set from positions and
// their non-negative weights. Weights are normalized to sum 1; a total that
// is numerically zero is rejected.
func NewDiscreteDistribution(support, weights []float64) (DiscreteDistribution, error) {
	if len(support) == 0 {
		return DiscreteDistribution{}, fmt.Errorf("%w: support must not be empty", ErrValidation)
	}
	if err := checkSameLen("support", support, "weights", weights); err != nil {
		return DiscreteDistribution{}, err
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return DiscreteDistribution{}, fmt.Errorf("%w: weight[%d]=%g must be non-negative", ErrValidation, i, w)
		}
	}
	total := floats.Sum(weights)
	if total < 1e-290 || math.IsInf(total, 0) {
		return DiscreteDistribution{}, fmt.Errorf("%w: weight total %g", ErrDegenerateWeights, total)
	}
	w := append([]float64(nil), weights...)
	floats.Scale(1/total, w)
	return DiscreteDistribution{wrapAllTo2Pi(support), w, cumulativeWeights(w)}, nil
}

// NewUniformDiscrete returns n equally weighted particles on the uniform
// grid 2πj/n.
func NewUniformDiscrete(n int) (DiscreteDistribution, error) {
	if n <= 0 {
		return DiscreteDistribution{}, fmt.Errorf("%w: sample count %d must be positive", ErrValidation, n)
	}
	return newEquallyWeighted(uniformGrid(n)), nil
}

// newEquallyWeighted wraps already canonical positions into an equal-weight
// set without revalidating.
func newEquallyWeighted(support []float64) DiscreteDistribution {
	w := make([]float64, len(support))
	for i := range w {
		w[i] = 1 / float64(len(support))
	}
	return DiscreteDistribution{support, w, cumulativeWeights(w)}
}

// Len returns the number of weighted samples.
func (d DiscreteDistribution) Len() int {
	return len(d.support)
}

// Support returns a copy of the sample positions.
func (d DiscreteDistribution) Support() []float64 {
	return append([]float64(nil), d.support...)
}

// Weights returns a copy of the sample weights.
func (d DiscreteDistribution) Weights() []float64 {
	return append([]float64(nil), d.weights...)
}

// TrigonometricMoment implements the Noise interface: Σ w_k·e^{in d_k},
// exact by definition.
func (d DiscreteDistribution) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	var re, im float64
	for k, pos := range d.support {
		s, c := math.Sincos(float64(n) * pos)
		re += d.weights[k] * c
		im += d.weights[k] * s
	}
	return complex(re, im), nil
}

// Sample implements the Sampler interface by inverse-CDF search over the
// cumulative weights. Every returned value is a member of the support.
func (d DiscreteDistribution) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	total := d.cum[len(d.cum)-1]
	out := make([]float64, count)
	for i := range out {
		out[i] = d.support[searchCum(d.cum, rng.Float64()*total)]
	}
	return out
}

// ApplyFunction maps every support value through f, leaving the weights
// untouched. Used for deterministic transitions.
func (d DiscreteDistribution) ApplyFunction(f func(float64) float64) DiscreteDistribution {
	s := make([]float64, len(d.support))
	for i, pos := range d.support {
		s[i] = WrapTo2Pi(f(pos))
	}
	return DiscreteDistribution{s, d.weights, d.cum}
}

// Reweigh multiplies every weight by f at its position and renormalizes.
// Individual zero weights are valid; a total that collapses to zero fails
// with a degenerate-weights error.
func (d DiscreteDistribution) Reweigh(f func(float64) float64) (DiscreteDistribution, error) {
	w := make([]float64, len(d.weights))
	for i, pos := range d.support {
		v := f(pos)
		if v < 0 || math.IsNaN(v) {
			return DiscreteDistribution{}, fmt.Errorf("%w: reweigh value %g at θ=%g must be non-negative", ErrValidation, v, pos)
		}
		w[i] = d.weights[i] * v
	}
	total := floats.Sum(w)
	if total < 1e-290 || math.IsInf(total, 0) {
		return DiscreteDistribution{}, fmt.Errorf("Reweigh: %w", ErrDegenerateWeights)
	}
	// Dividing keeps a lone surviving weight at exactly 1.
	for i := range w {
		w[i] /= total
	}
	return DiscreteDistribution{d.support, w, cumulativeWeights(w)}, nil
}

// MeanDirection returns the direction of the first trigonometric moment.
// It is undefined when the resultant length is numerically zero.
func (d DiscreteDistribution) MeanDirection() (float64, error) {
	m, _ := d.TrigonometricMoment(1)
	if cmplx.Abs(m) < 1e-13 {
		return 0, fmt.Errorf("MeanDirection: %w: resultant length is numerically zero", ErrValidation)
	}
	return WrapTo2Pi(stat.CircularMean(d.support, d.weights)), nil
}

// String implements the Stringer interface.
func (d DiscreteDistribution) String() string {
	return fmt.Sprintf("Discrete{n=%d}", len(d.support))
}

// DiracApprox3 approximates a circular density by three equally weighted
// atoms matching its first trigonometric moment.
func DiracApprox3(src Noise) (DiscreteDistribution, error) {
	m1, err := src.TrigonometricMoment(1)
	if err != nil {
		return DiscreteDistribution{}, err
	}
	r := cmplx.Abs(m1)
	if math.IsNaN(r) || r > 1+1e-9 {
		return DiscreteDistribution{}, fmt.Errorf("DiracApprox3: %w: |m1|=%g is not a valid moment length", ErrValidation, r)
	}
	μ := cmplx.Phase(m1)
	α := math.Acos(clampUnit((3*r - 1) / 2))
	support := []float64{WrapTo2Pi(μ - α), WrapTo2Pi(μ), WrapTo2Pi(μ + α)}
	weights := []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	return DiscreteDistribution{support, weights, cumulativeWeights(weights)}, nil
}

// DiracApprox5 approximates a circular density by five weighted atoms
// matching its first two trigonometric moments. λ in [0, 1] selects the
// central weight between its admissible extremes; 0.5 is a sensible
// default. Matching uses the real parts of the centered moments, which is
// exact for densities symmetric about their mean direction.
func DiracApprox5(src Noise, λ float64) (DiscreteDistribution, error) {
	if λ < 0 || λ > 1 || math.IsNaN(λ) {
		return DiscreteDistribution{}, fmt.Errorf("DiracApprox5: %w: λ=%g must lie in [0,1]", ErrValidation, λ)
	}
	m1, err := src.TrigonometricMoment(1)
	if err != nil {
		return DiscreteDistribution{}, err
	}
	m2, err := src.TrigonometricMoment(2)
	if err != nil {
		return DiscreteDistribution{}, err
	}
	μ := cmplx.Phase(m1)
	c1 := cmplx.Abs(m1)
	c2 := real(m2 * cmplx.Exp(complex(0, -2*μ)))
	if math.IsNaN(c1) || math.IsNaN(c2) || c1 > 1+1e-9 {
		return DiscreteDistribution{}, fmt.Errorf("DiracApprox5: %w: moments (%g, %g) are not admissible", ErrValidation, c1, c2)
	}
	if c1 > 1-1e-12 {
		// Point mass: all weight at the mean direction.
		return DiscreteDistribution{[]float64{WrapTo2Pi(μ)}, []float64{1}, []float64{1}}, nil
	}
	den := 4*c1 - c2 - 3
	if math.Abs(den) < 1e-14 {
		return DiscreteDistribution{}, fmt.Errorf("DiracApprox5: %w: moments (%g, %g) are not admissible", ErrValidation, c1, c2)
	}
	w5min := (4*c1*c1 - 4*c1 - c2 + 1) / den
	w5max := (2*c1*c1 - c2 - 1) / den
	if w5min < 0 {
		w5min = 0
	}
	if w5max > 1 {
		w5max = 1
	}
	w5 := w5min + λ*(w5max-w5min)
	if w5 < 0 || w5 > 1 || w5max < w5min {
		return DiscreteDistribution{}, fmt.Errorf("DiracApprox5: %w: moments (%g, %g) are not admissible", ErrValidation, c1, c2)
	}
	if 1-w5 < 1e-12 {
		return DiscreteDistribution{[]float64{WrapTo2Pi(μ)}, []float64{1}, []float64{1}}, nil
	}
	s1 := 2 * (c1 - w5) / (1 - w5)
	s2 := (c2-w5)/(1-w5) + 1
	disc := 2*s2 - s1*s1
	if disc < 0 {
		if disc < -1e-9 {
			return DiscreteDistribution{}, fmt.Errorf("DiracApprox5: %w: moments (%g, %g) are not admissible", ErrValidation, c1, c2)
		}
		disc = 0
	}
	root := math.Sqrt(disc)
	φ1 := math.Acos(clampUnit((s1 + root) / 2))
	φ2 := math.Acos(clampUnit((s1 - root) / 2))
	w4 := (1 - w5) / 4
	support := []float64{
		WrapTo2Pi(μ - φ2), WrapTo2Pi(μ - φ1), WrapTo2Pi(μ),
		WrapTo2Pi(μ + φ1), WrapTo2Pi(μ + φ2),
	}
	weights := []float64{w4, w4, w5, w4, w4}
	return DiscreteDistribution{support, weights, cumulativeWeights(weights)}, nil
}
