package gocircular

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// VonMises is the circular analogue of the Gaussian, with mean direction
// Mu and concentration Kappa. It implements the SampledNoise and
// CoefficientSource interfaces, so FourierDensity conversions are analytic
// in every encoding.
type VonMises struct {
	Mu    float64
	Kappa float64
}

// NewVonMises returns a von Mises distribution with mean direction μ and
// concentration κ > 0.
func NewVonMises(μ, κ float64) (VonMises, error) {
	if math.IsNaN(μ) || math.IsInf(μ, 0) {
		return VonMises{}, fmt.Errorf("NewVonMises: %w: μ=%g must be finite", ErrValidation, μ)
	}
	if κ <= 0 || math.IsNaN(κ) || math.IsInf(κ, 0) {
		return VonMises{}, fmt.Errorf("NewVonMises: %w: κ=%g must be positive and finite", ErrValidation, κ)
	}
	return VonMises{Mu: WrapTo2Pi(μ), Kappa: κ}, nil
}

// VonMisesFromMoment returns the von Mises matching a first trigonometric
// moment, inverting A(κ) = I₁(κ)/I₀(κ) with Fisher's piecewise
// approximation.
func VonMisesFromMoment(m complex128) (VonMises, error) {
	r := cmplx.Abs(m)
	if math.IsNaN(r) || r > 1+1e-9 {
		return VonMises{}, fmt.Errorf("VonMisesFromMoment: %w: |m1|=%g is not a valid moment length", ErrValidation, r)
	}
	if r > 1-1e-12 {
		r = 1 - 1e-12
	}
	var κ float64
	switch {
	case r < 0.53:
		κ = 2*r + r*r*r + 5*r*r*r*r*r/6
	case r < 0.85:
		κ = -0.4 + 1.39*r + 0.43/(1-r)
	default:
		κ = 1 / (r*r*r - 4*r*r + 3*r)
	}
	κ = max(κ, 1e-8)
	return VonMises{Mu: WrapTo2Pi(cmplx.Phase(m)), Kappa: κ}, nil
}

// PDF implements the Density interface. The scaled Bessel form
// exp(κ(cos δ - 1))/(2π·I₀e(κ)) stays finite for any concentration.
func (vm VonMises) PDF(angles []float64) []float64 {
	norm := 2 * math.Pi * besselI0e(vm.Kappa)
	out := make([]float64, len(angles))
	for i, θ := range angles {
		out[i] = math.Exp(vm.Kappa*(math.Cos(θ-vm.Mu)-1)) / norm
	}
	return out
}

// TrigonometricMoment implements the Noise interface:
// m_n = (I_n(κ)/I₀(κ))·e^{inμ}.
func (vm VonMises) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	order := n
	if order < 0 {
		order = -order
	}
	r := besselIRatios(order, vm.Kappa)[order]
	s, c := math.Sincos(float64(n) * vm.Mu)
	return complex(r*c, r*s), nil
}

// Sample implements the Sampler interface with the Best-Fisher rejection
// sampler.
func (vm VonMises) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	out := make([]float64, count)
	if vm.Kappa < 1e-9 {
		for i := range out {
			out[i] = rng.Float64() * 2 * math.Pi
		}
		return out
	}
	τ := 1 + math.Sqrt(1+4*vm.Kappa*vm.Kappa)
	ρ := (τ - math.Sqrt(2*τ)) / (2 * vm.Kappa)
	r := (1 + ρ*ρ) / (2 * ρ)
	for i := range out {
		for {
			u1, u2 := rng.Float64(), rng.Float64()
			if u2 == 0 {
				continue
			}
			z := math.Cos(math.Pi * u1)
			f := (1 + r*z) / (r + z)
			c := vm.Kappa * (r - f)
			if c*(2-c)-u2 > 0 || math.Log(c/u2)+1-c >= 0 {
				θ := math.Acos(clampUnit(f))
				if rng.Float64() < 0.5 {
					θ = -θ
				}
				out[i] = WrapTo2Pi(vm.Mu + θ)
				break
			}
		}
	}
	return out
}

// FourierCoefficients implements the CoefficientSource interface. All
// three encodings have closed forms: the Identity series carries the
// moments, the square root of a von Mises is an unnormalized von Mises
// with κ/2, and the log density is a single harmonic.
func (vm VonMises) FourierCoefficients(enc Encoding, coeffCount int) (a, b []float64, ok bool) {
	if checkCoeffCount(coeffCount) != nil {
		return nil, nil, false
	}
	m := (coeffCount - 1) / 2
	a = make([]float64, m+1)
	b = make([]float64, m)
	switch enc {
	case Identity:
		ratios := besselIRatios(m, vm.Kappa)
		a[0] = 1 / math.Pi
		for k := 1; k <= m; k++ {
			s, c := math.Sincos(float64(k) * vm.Mu)
			a[k] = ratios[k] * c / math.Pi
			b[k-1] = ratios[k] * s / math.Pi
		}
	case Sqrt:
		// The e^{κ/2} of I₀(κ/2) cancels against √(e^κ) of the normalizer,
		// so scaled Bessel values suffice for any κ.
		i0eHalf := besselI0e(vm.Kappa / 2)
		norm := math.Sqrt(2 * math.Pi * besselI0e(vm.Kappa))
		ratios := besselIRatios(m, vm.Kappa/2)
		a[0] = 2 * i0eHalf / norm
		for k := 1; k <= m; k++ {
			s, c := math.Sincos(float64(k) * vm.Mu)
			a[k] = 2 * ratios[k] * i0eHalf * c / norm
			b[k-1] = 2 * ratios[k] * i0eHalf * s / norm
		}
	case Log:
		a[0] = -2 * (math.Log(2*math.Pi) + logBesselI0(vm.Kappa))
		if m >= 1 {
			s, c := math.Sincos(vm.Mu)
			a[1] = vm.Kappa * c
			b[0] = vm.Kappa * s
		}
	default:
		return nil, nil, false
	}
	return a, b, true
}

// String implements the Stringer interface.
func (vm VonMises) String() string {
	return fmt.Sprintf("VM(μ=%.4f, κ=%.4f)", vm.Mu, vm.Kappa)
}
