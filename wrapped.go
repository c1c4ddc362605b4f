package gocircular

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// WrappedNormal is a Gaussian with mean Mu and standard deviation Sigma
// wrapped around the circle.
type WrappedNormal struct {
	Mu    float64
	Sigma float64
}

// NewWrappedNormal returns a wrapped normal distribution with σ > 0.
func NewWrappedNormal(μ, σ float64) (WrappedNormal, error) {
	if math.IsNaN(μ) || math.IsInf(μ, 0) {
		return WrappedNormal{}, fmt.Errorf("NewWrappedNormal: %w: μ=%g must be finite", ErrValidation, μ)
	}
	if σ <= 0 || math.IsNaN(σ) || math.IsInf(σ, 0) {
		return WrappedNormal{}, fmt.Errorf("NewWrappedNormal: %w: σ=%g must be positive and finite", ErrValidation, σ)
	}
	return WrappedNormal{Mu: WrapTo2Pi(μ), Sigma: σ}, nil
}

// PDF implements the Density interface. Narrow densities sum a handful of
// Gaussian images directly; wide ones converge faster through the Fourier
// form 1/2π·(1 + 2Σ ρ^{n²}·cos nδ) with ρ = e^{-σ²/2}.
func (wn WrappedNormal) PDF(angles []float64) []float64 {
	out := make([]float64, len(angles))
	if wn.Sigma > 1.4 {
		ρ := math.Exp(-wn.Sigma * wn.Sigma / 2)
		for i, θ := range angles {
			δ := θ - wn.Mu
			v := 1.0
			for n := 1; n <= 50; n++ {
				term := math.Pow(ρ, float64(n*n))
				if term < 1e-18 {
					break
				}
				v += 2 * term * math.Cos(float64(n)*δ)
			}
			out[i] = v / (2 * math.Pi)
		}
		return out
	}
	k := int(math.Ceil(5*wn.Sigma/(2*math.Pi))) + 1
	norm := wn.Sigma * math.Sqrt(2*math.Pi)
	for i, θ := range angles {
		δ := WrapTo2Pi(θ - wn.Mu)
		var v float64
		for j := -k; j <= k; j++ {
			d := δ + 2*math.Pi*float64(j)
			v += math.Exp(-d * d / (2 * wn.Sigma * wn.Sigma))
		}
		out[i] = v / norm
	}
	return out
}

// TrigonometricMoment implements the Noise interface:
// m_n = e^{inμ}·e^{-n²σ²/2}.
func (wn WrappedNormal) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	mag := math.Exp(-float64(n) * float64(n) * wn.Sigma * wn.Sigma / 2)
	s, c := math.Sincos(float64(n) * wn.Mu)
	return complex(mag*c, mag*s), nil
}

// Sample implements the Sampler interface by wrapping Gaussian draws.
func (wn WrappedNormal) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	src := distuv.Normal{Mu: wn.Mu, Sigma: wn.Sigma, Src: rng}
	out := make([]float64, count)
	for i := range out {
		out[i] = WrapTo2Pi(src.Rand())
	}
	return out
}

// String implements the Stringer interface.
func (wn WrappedNormal) String() string {
	return fmt.Sprintf("WN(μ=%.4f, σ=%.4f)", wn.Mu, wn.Sigma)
}

// WrappedCauchy is a Cauchy distribution with location Mu and scale Gamma
// wrapped around the circle. The wrapped density has a closed form.
type WrappedCauchy struct {
	Mu    float64
	Gamma float64
}

// NewWrappedCauchy returns a wrapped Cauchy distribution with γ > 0.
func NewWrappedCauchy(μ, γ float64) (WrappedCauchy, error) {
	if math.IsNaN(μ) || math.IsInf(μ, 0) {
		return WrappedCauchy{}, fmt.Errorf("NewWrappedCauchy: %w: μ=%g must be finite", ErrValidation, μ)
	}
	if γ <= 0 || math.IsNaN(γ) || math.IsInf(γ, 0) {
		return WrappedCauchy{}, fmt.Errorf("NewWrappedCauchy: %w: γ=%g must be positive and finite", ErrValidation, γ)
	}
	return WrappedCauchy{Mu: WrapTo2Pi(μ), Gamma: γ}, nil
}

// PDF implements the Density interface. expm1 keeps the numerator exact
// for small γ.
func (wc WrappedCauchy) PDF(angles []float64) []float64 {
	num := -math.Expm1(-2 * wc.Gamma)
	e1 := math.Exp(-wc.Gamma)
	e2 := math.Exp(-2 * wc.Gamma)
	out := make([]float64, len(angles))
	for i, θ := range angles {
		out[i] = num / (2 * math.Pi * (1 + e2 - 2*e1*math.Cos(θ-wc.Mu)))
	}
	return out
}

// TrigonometricMoment implements the Noise interface:
// m_n = e^{inμ}·e^{-|n|γ}.
func (wc WrappedCauchy) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	mag := math.Exp(-math.Abs(float64(n)) * wc.Gamma)
	s, c := math.Sincos(float64(n) * wc.Mu)
	return complex(mag*c, mag*s), nil
}

// Sample implements the Sampler interface by wrapping Cauchy draws from
// the inverse CDF.
func (wc WrappedCauchy) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = WrapTo2Pi(wc.Mu + wc.Gamma*math.Tan(math.Pi*(rng.Float64()-0.5)))
	}
	return out
}

// String implements the Stringer interface.
func (wc WrappedCauchy) String() string {
	return fmt.Sprintf("WC(μ=%.4f, γ=%.4f)", wc.Mu, wc.Gamma)
}

// WrappedExponential is an exponential distribution with rate Lambda
// wrapped around the circle, an asymmetric density useful for drift noise.
type WrappedExponential struct {
	Lambda float64
}

// NewWrappedExponential returns a wrapped exponential distribution with
// λ > 0.
func NewWrappedExponential(λ float64) (WrappedExponential, error) {
	if λ <= 0 || math.IsNaN(λ) || math.IsInf(λ, 0) {
		return WrappedExponential{}, fmt.Errorf("NewWrappedExponential: %w: λ=%g must be positive and finite", ErrValidation, λ)
	}
	return WrappedExponential{Lambda: λ}, nil
}

// PDF implements the Density interface. The geometric image sum collapses
// to a single exponential over one period.
func (we WrappedExponential) PDF(angles []float64) []float64 {
	norm := -math.Expm1(-2 * math.Pi * we.Lambda)
	out := make([]float64, len(angles))
	for i, θ := range angles {
		out[i] = we.Lambda * math.Exp(-we.Lambda*WrapTo2Pi(θ)) / norm
	}
	return out
}

// TrigonometricMoment implements the Noise interface: m_n = λ/(λ - in),
// the exponential characteristic function at integer arguments.
func (we WrappedExponential) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	return complex(we.Lambda, 0) / complex(we.Lambda, -float64(n)), nil
}

// Sample implements the Sampler interface by wrapping exponential draws.
func (we WrappedExponential) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	src := distuv.Exponential{Rate: we.Lambda, Src: rng}
	out := make([]float64, count)
	for i := range out {
		out[i] = WrapTo2Pi(src.Rand())
	}
	return out
}

// String implements the Stringer interface.
func (we WrappedExponential) String() string {
	return fmt.Sprintf("WE(λ=%.4f)", we.Lambda)
}

// WrappedLaplace is a Laplace distribution with location Mu and scale B
// wrapped around the circle.
type WrappedLaplace struct {
	Mu float64
	B  float64
}

// NewWrappedLaplace returns a wrapped Laplace distribution with scale
// b > 0.
func NewWrappedLaplace(μ, b float64) (WrappedLaplace, error) {
	if math.IsNaN(μ) || math.IsInf(μ, 0) {
		return WrappedLaplace{}, fmt.Errorf("NewWrappedLaplace: %w: μ=%g must be finite", ErrValidation, μ)
	}
	if b <= 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return WrappedLaplace{}, fmt.Errorf("NewWrappedLaplace: %w: b=%g must be positive and finite", ErrValidation, b)
	}
	return WrappedLaplace{Mu: WrapTo2Pi(μ), B: b}, nil
}

// PDF implements the Density interface. Both one-sided geometric image
// sums collapse, leaving two exponentials per period.
func (wl WrappedLaplace) PDF(angles []float64) []float64 {
	norm := 2 * wl.B * -math.Expm1(-2*math.Pi/wl.B)
	out := make([]float64, len(angles))
	for i, θ := range angles {
		δ := WrapTo2Pi(θ - wl.Mu)
		out[i] = (math.Exp(-δ/wl.B) + math.Exp(-(2*math.Pi-δ)/wl.B)) / norm
	}
	return out
}

// TrigonometricMoment implements the Noise interface:
// m_n = e^{inμ}/(1 + n²b²).
func (wl WrappedLaplace) TrigonometricMoment(n int) (complex128, error) {
	if n == 0 {
		return 1, nil
	}
	mag := 1 / (1 + float64(n)*float64(n)*wl.B*wl.B)
	s, c := math.Sincos(float64(n) * wl.Mu)
	return complex(mag*c, mag*s), nil
}

// Sample implements the Sampler interface by wrapping Laplace draws.
func (wl WrappedLaplace) Sample(rng *rand.Rand, count int) []float64 {
	if rng == nil {
		rng = defaultRNG()
	}
	src := distuv.Laplace{Mu: wl.Mu, Scale: wl.B, Src: rng}
	out := make([]float64, count)
	for i := range out {
		out[i] = WrapTo2Pi(src.Rand())
	}
	return out
}

// String implements the Stringer interface.
func (wl WrappedLaplace) String() string {
	return fmt.Sprintf("WL(μ=%.4f, b=%.4f)", wl.Mu, wl.B)
}
