package gocircular

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// ToroidalDiscreteDistribution is a weighted sample set on the torus:
// pairs of angles with a shared weight, both components canonicalized into
// [0, 2π). It models correlated angular states such as the orientations of
// two coupled joints.
type ToroidalDiscreteDistribution struct {
	first   []float64
	second  []float64
	weights []float64
	cum     []float64
}

// NewToroidalDiscreteDistribution builds a toroidal sample set from paired
// positions and their non-negative weights, normalized to sum 1.
func NewToroidalDiscreteDistribution(first, second, weights []float64) (ToroidalDiscreteDistribution, error) {
	if len(first) == 0 {
		return ToroidalDiscreteDistribution{}, fmt.Errorf("%w: support must not be empty", ErrValidation)
	}
	if err := checkSameLen("first", first, "second", second); err != nil {
		return ToroidalDiscreteDistribution{}, err
	}
	if err := checkSameLen("first", first, "weights", weights); err != nil {
		return ToroidalDiscreteDistribution{}, err
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return ToroidalDiscreteDistribution{}, fmt.Errorf("%w: weight[%d]=%g must be non-negative", ErrValidation, i, w)
		}
	}
	total := floats.Sum(weights)
	if total < 1e-290 || math.IsInf(total, 0) {
		return ToroidalDiscreteDistribution{}, fmt.Errorf("%w: weight total %g", ErrDegenerateWeights, total)
	}
	w := append([]float64(nil), weights...)
	floats.Scale(1/total, w)
	return ToroidalDiscreteDistribution{wrapAllTo2Pi(first), wrapAllTo2Pi(second), w, cumulativeWeights(w)}, nil
}

// Len returns the number of weighted pairs.
func (t ToroidalDiscreteDistribution) Len() int {
	return len(t.first)
}

// Weights returns a copy of the pair weights.
func (t ToroidalDiscreteDistribution) Weights() []float64 {
	return append([]float64(nil), t.weights...)
}

// Marginal returns the circular distribution of one component, 0 for the
// first and 1 for the second, keeping the pair weights.
func (t ToroidalDiscreteDistribution) Marginal(component int) (DiscreteDistribution, error) {
	switch component {
	case 0:
		return DiscreteDistribution{t.first, t.weights, t.cum}, nil
	case 1:
		return DiscreteDistribution{t.second, t.weights, t.cum}, nil
	}
	return DiscreteDistribution{}, fmt.Errorf("Marginal: %w: component %d must be 0 or 1", ErrValidation, component)
}

// ApplyFunction maps every pair through f, leaving the weights untouched.
func (t ToroidalDiscreteDistribution) ApplyFunction(f func(x, y float64) (float64, float64)) ToroidalDiscreteDistribution {
	first := make([]float64, len(t.first))
	second := make([]float64, len(t.second))
	for i := range t.first {
		x, y := f(t.first[i], t.second[i])
		first[i] = WrapTo2Pi(x)
		second[i] = WrapTo2Pi(y)
	}
	return ToroidalDiscreteDistribution{first, second, t.weights, t.cum}
}

// Reweigh multiplies every weight by f at its pair and renormalizes.
func (t ToroidalDiscreteDistribution) Reweigh(f func(x, y float64) float64) (ToroidalDiscreteDistribution, error) {
	w := make([]float64, len(t.weights))
	for i := range t.weights {
		v := f(t.first[i], t.second[i])
		if v < 0 || math.IsNaN(v) {
			return ToroidalDiscreteDistribution{}, fmt.Errorf("%w: reweigh value %g at (%g, %g) must be non-negative", ErrValidation, v, t.first[i], t.second[i])
		}
		w[i] = t.weights[i] * v
	}
	total := floats.Sum(w)
	if total < 1e-290 || math.IsInf(total, 0) {
		return ToroidalDiscreteDistribution{}, fmt.Errorf("Reweigh: %w", ErrDegenerateWeights)
	}
	// Dividing keeps a lone surviving weight at exactly 1.
	for i := range w {
		w[i] /= total
	}
	return ToroidalDiscreteDistribution{t.first, t.second, w, cumulativeWeights(w)}, nil
}

// Sample draws count pairs by inverse-CDF search over the shared weights.
func (t ToroidalDiscreteDistribution) Sample(rng *rand.Rand, count int) (x, y []float64) {
	if rng == nil {
		rng = defaultRNG()
	}
	total := t.cum[len(t.cum)-1]
	x = make([]float64, count)
	y = make([]float64, count)
	for i := range x {
		j := searchCum(t.cum, rng.Float64()*total)
		x[i] = t.first[j]
		y[i] = t.second[j]
	}
	return x, y
}

// CircularCorrelation returns the circular correlation coefficient of the
// two components, in [-1, 1]. It fails when either marginal has no mean
// direction or no angular spread.
func (t ToroidalDiscreteDistribution) CircularCorrelation() (float64, error) {
	m0, err := t.Marginal(0)
	if err != nil {
		return 0, err
	}
	μ1, err := m0.MeanDirection()
	if err != nil {
		return 0, err
	}
	m1, err := t.Marginal(1)
	if err != nil {
		return 0, err
	}
	μ2, err := m1.MeanDirection()
	if err != nil {
		return 0, err
	}
	var num, d1, d2 float64
	for i, w := range t.weights {
		s1 := math.Sin(t.first[i] - μ1)
		s2 := math.Sin(t.second[i] - μ2)
		num += w * s1 * s2
		d1 += w * s1 * s1
		d2 += w * s2 * s2
	}
	if d1 < 1e-290 || d2 < 1e-290 {
		return 0, fmt.Errorf("CircularCorrelation: %w: zero angular spread", ErrValidation)
	}
	return num / math.Sqrt(d1*d2), nil
}

// String implements the Stringer interface.
func (t ToroidalDiscreteDistribution) String() string {
	return fmt.Sprintf("ToroidalDiscrete{n=%d}", len(t.first))
}
