package gocircular

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// DiscreteFilter is a particle filter on the circle. The belief is a
// weighted sample set; prediction pushes every particle through the
// transition crossed with every noise atom and resamples back to the
// belief size, update reweighs by the measurement likelihood. Scratch
// buffers for the cross product are reused across steps.
type DiscreteFilter struct {
	belief DiscreteDistribution
	n      int
	rng    *rand.Rand
	scheme ResamplingScheme

	scratchS []float64
	scratchW []float64
	scratchC []float64
	scratchI []int
}

// NewDiscreteFilter returns a filter holding n particles with a uniform
// initial belief. A nil rng falls back to a fixed-seed generator.
func NewDiscreteFilter(n int, rng *rand.Rand) (*DiscreteFilter, error) {
	if n <= 0 {
		return nil, fmt.Errorf("NewDiscreteFilter: %w: particle count %d must be positive", ErrValidation, n)
	}
	if rng == nil {
		rng = defaultRNG()
	}
	belief, err := NewUniformDiscrete(n)
	if err != nil {
		return nil, err
	}
	return &DiscreteFilter{belief: belief, n: n, rng: rng, scheme: SystematicResampling}, nil
}

// SetResampling selects the scheme used after prediction cross products.
func (kf *DiscreteFilter) SetResampling(scheme ResamplingScheme) error {
	switch scheme {
	case SystematicResampling, SimpleResampling:
		kf.scheme = scheme
		return nil
	}
	return fmt.Errorf("SetResampling: %w: unknown scheme %d", ErrValidation, scheme)
}

// SetState replaces the belief. A DiscreteDistribution is adopted as is,
// whatever its size. A state that can sample is drawn from with the
// filter's particle count. Anything else is collapsed to its five-atom
// moment approximation.
func (kf *DiscreteFilter) SetState(state Noise) error {
	switch s := state.(type) {
	case DiscreteDistribution:
		kf.belief = s
		return nil
	case Sampler:
		kf.belief = newEquallyWeighted(wrapAllTo2Pi(s.Sample(kf.rng, kf.n)))
		return nil
	}
	belief, err := DiracApprox5(state, 0.5)
	if err != nil {
		return err
	}
	kf.belief = belief
	return nil
}

// Estimate returns the current belief.
func (kf *DiscreteFilter) Estimate() DiscreteDistribution {
	return kf.belief
}

// PredictIdentity advances the belief by additive noise alone.
func (kf *DiscreteFilter) PredictIdentity(noise Noise) error {
	return kf.PredictNonlinear(func(θ float64) float64 { return θ }, noise)
}

// PredictNonlinear advances the belief through the transition f plus
// additive noise: x' = f(x) + w.
func (kf *DiscreteFilter) PredictNonlinear(f func(float64) float64, noise Noise) error {
	atoms, err := noiseAtoms(noise)
	if err != nil {
		return err
	}
	return kf.predictAtoms(func(θ, η float64) float64 { return f(θ) + η }, atoms.support, atoms.weights)
}

// PredictNonlinearNonAdditive advances the belief through a transition
// taking the noise as a second argument: x' = f(x, w). The noise is given
// as weighted atoms and may live on any space, so its values are not
// wrapped.
func (kf *DiscreteFilter) PredictNonlinearNonAdditive(f func(state, noise float64) float64, noiseSupport, noiseWeights []float64) error {
	if len(noiseSupport) == 0 {
		return fmt.Errorf("PredictNonlinearNonAdditive: %w: noise support must not be empty", ErrValidation)
	}
	if err := checkSameLen("noiseSupport", noiseSupport, "noiseWeights", noiseWeights); err != nil {
		return err
	}
	for i, w := range noiseWeights {
		if w < 0 {
			return fmt.Errorf("PredictNonlinearNonAdditive: %w: weight[%d]=%g must be non-negative", ErrValidation, i, w)
		}
	}
	total := floats.Sum(noiseWeights)
	if total < 1e-290 {
		return fmt.Errorf("PredictNonlinearNonAdditive: %w", ErrDegenerateWeights)
	}
	w := append([]float64(nil), noiseWeights...)
	floats.Scale(1/total, w)
	return kf.predictAtoms(f, noiseSupport, w)
}

// noiseAtoms reduces a noise model to weighted atoms: discrete noise is
// used as is, anything else through its five-atom moment approximation.
func noiseAtoms(noise Noise) (DiscreteDistribution, error) {
	if d, ok := noise.(DiscreteDistribution); ok {
		return d, nil
	}
	return DiracApprox5(noise, 0.5)
}

// predictAtoms forms the n×k cross product of belief particles and noise
// atoms, then resamples back to the belief size. A single noise atom is a
// deterministic shift and skips the resampling entirely.
func (kf *DiscreteFilter) predictAtoms(g func(state, noise float64) float64, noiseSupport, noiseWeights []float64) error {
	if len(noiseSupport) == 1 {
		η := noiseSupport[0]
		kf.belief = kf.belief.ApplyFunction(func(θ float64) float64 { return g(θ, η) })
		return nil
	}
	n := kf.belief.Len()
	total := n * len(noiseSupport)
	kf.ensureScratch(total, n)
	for i, θ := range kf.belief.support {
		wi := kf.belief.weights[i]
		base := i * len(noiseSupport)
		for j, η := range noiseSupport {
			kf.scratchS[base+j] = WrapTo2Pi(g(θ, η))
			kf.scratchW[base+j] = wi * noiseWeights[j]
		}
	}
	floats.CumSum(kf.scratchC[:total], kf.scratchW[:total])
	idx, err := resampleIndices(kf.scheme, kf.rng, kf.scratchC[:total], n, kf.scratchI)
	if err != nil {
		return err
	}
	kf.scratchI = idx
	support := make([]float64, n)
	for i, j := range idx {
		support[i] = kf.scratchS[j]
	}
	kf.belief = newEquallyWeighted(support)
	return nil
}

// ensureScratch grows the cross-product buffers to hold total entries and
// targets resampled indices.
func (kf *DiscreteFilter) ensureScratch(total, targets int) {
	if cap(kf.scratchS) < total {
		kf.scratchS = make([]float64, total)
		kf.scratchW = make([]float64, total)
		kf.scratchC = make([]float64, total)
	}
	kf.scratchS = kf.scratchS[:total]
	kf.scratchW = kf.scratchW[:total]
	kf.scratchC = kf.scratchC[:total]
	if cap(kf.scratchI) < targets {
		kf.scratchI = make([]int, targets)
	}
	kf.scratchI = kf.scratchI[:targets]
}

// UpdateNonlinear reweighs the belief by the likelihood of the measurement
// at each particle. The belief is left untouched when the weights
// degenerate, so the caller may retry with the next measurement.
func (kf *DiscreteFilter) UpdateNonlinear(l Likelihood, measurement float64) error {
	belief, err := kf.belief.Reweigh(func(θ float64) float64 { return l(measurement, θ) })
	if err != nil {
		return err
	}
	kf.belief = belief
	return nil
}

// String implements the Stringer interface.
func (kf *DiscreteFilter) String() string {
	return fmt.Sprintf("DiscreteFilter{n=%d, %v}", kf.belief.Len(), kf.scheme)
}
