// Package gocircular provides probability distributions on the circle and
// recursive Bayesian estimation for states that wrap around, such as
// orientation angles. Beliefs are represented either as weighted particle
// sets (DiscreteDistribution, filtered by DiscreteFilter) or as truncated
// Fourier series of the density (FourierDensity, filtered by FourierFilter).
package gocircular

import "math/rand/v2"

// Encoding selects which transformation of the true density a set of Fourier
// coefficients approximates.
type Encoding uint8

const (
	// Sqrt stores coefficients of the square root of the density.
	Sqrt Encoding = iota + 1
	// Identity stores coefficients of the density itself.
	Identity
	// Log stores coefficients of the natural logarithm of the density.
	Log
)

// String implements the Stringer interface.
func (e Encoding) String() string {
	switch e {
	case Sqrt:
		return "sqrt"
	case Identity:
		return "identity"
	case Log:
		return "log"
	}
	return "unknown"
}

// Noise is the minimal capability required of a noise model: its
// trigonometric moments. Every distribution in this package implements it.
type Noise interface {
	// TrigonometricMoment returns E[e^{inθ}]. The zeroth moment is always 1
	// and negative orders are the conjugates of the positive ones.
	TrigonometricMoment(n int) (complex128, error)
}

// Density is the capability interface shared by circular distributions that
// can be evaluated pointwise.
type Density interface {
	Noise
	// PDF evaluates the density at each angle. Angles may lie outside
	// [0, 2π); the density is 2π-periodic and integrates to 1 over any full
	// period.
	PDF(angles []float64) []float64
}

// Sampler is implemented by distributions that can draw variates.
type Sampler interface {
	// Sample draws count independent variates in [0, 2π) using rng.
	Sample(rng *rand.Rand, count int) []float64
}

// SampledNoise couples the density view of a noise model with its generator.
// Truth simulation requires both.
type SampledNoise interface {
	Density
	Sampler
}

// CoefficientSource is implemented by families with analytic Fourier
// coefficients. FourierFromDensity probes it before any fallback.
type CoefficientSource interface {
	// FourierCoefficients returns the series coefficients of the encoded
	// density with the requested total coefficient count (one DC term plus
	// symmetric cosine/sine pairs, so count must be odd). ok is false when
	// the family has no analytic formula for enc.
	FourierCoefficients(enc Encoding, coeffCount int) (a, b []float64, ok bool)
}

// Likelihood maps a measurement and a state position to a non-negative
// weight. It does not need to integrate to 1 in either argument.
type Likelihood func(measurement, state float64) float64
