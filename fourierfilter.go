package gocircular

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// FourierFilter is a recursive Bayesian estimator whose belief is a
// FourierDensity with a fixed encoding and coefficient count. Prediction
// is a convolution with the noise density, update a multiplication with
// the likelihood followed by truncation back to the filter's coefficient
// count. Approximate steps surface as non-fatal Warnings; the filter
// keeps running.
type FourierFilter struct {
	belief FourierDensity
	count  int
}

// NewFourierFilter returns a filter with a uniform initial belief holding
// coeffCount coefficients in the given encoding.
func NewFourierFilter(coeffCount int, enc Encoding) (*FourierFilter, error) {
	belief, err := NewUniformFourier(coeffCount, enc)
	if err != nil {
		return nil, err
	}
	return &FourierFilter{belief: belief, count: coeffCount}, nil
}

// SetState replaces the belief with a density in the filter's encoding,
// resized to the filter's coefficient count if needed.
func (kf *FourierFilter) SetState(belief FourierDensity) error {
	if belief.Encoding() != kf.belief.Encoding() {
		return fmt.Errorf("SetState: %w: belief encoding %v does not match filter encoding %v", ErrValidation, belief.Encoding(), kf.belief.Encoding())
	}
	if belief.CoeffCount() != kf.count {
		resized, err := belief.Truncate(kf.count)
		if err != nil && !IsWarning(err) {
			return err
		}
		kf.belief = resized
		return err
	}
	kf.belief = belief
	return nil
}

// Estimate returns the current belief density.
func (kf *FourierFilter) Estimate() FourierDensity {
	return kf.belief
}

// EstimateMeanDirection returns the direction of the belief's first
// trigonometric moment.
func (kf *FourierFilter) EstimateMeanDirection() (float64, error) {
	m1, err := kf.belief.TrigonometricMoment(1)
	if err != nil {
		return 0, err
	}
	if cmplx.Abs(m1) < 1e-13 {
		return 0, fmt.Errorf("EstimateMeanDirection: %w: resultant length is numerically zero", ErrValidation)
	}
	return WrapTo2Pi(cmplx.Phase(m1)), nil
}

// Predict convolves the belief with the density of additive noise. Noise
// already in the filter's encoding is used directly, anything else is
// converted first.
func (kf *FourierFilter) Predict(noise Noise) error {
	nfd, err := kf.noiseDensity(noise)
	if err != nil && !IsWarning(err) {
		return err
	}
	warn := err
	predicted, err := kf.belief.Convolve(nfd, kf.count)
	if err != nil && !IsWarning(err) {
		return err
	}
	kf.belief = predicted
	return errors.Join(warn, err)
}

// PredictShifted rotates the belief by the deterministic motion shift and
// then convolves with the noise, the Fourier analogue of x' = x + u + w.
func (kf *FourierFilter) PredictShifted(shift float64, noise Noise) error {
	kf.belief = kf.belief.Shift(shift)
	return kf.Predict(noise)
}

// noiseDensity converts a noise model into the filter's encoding and
// count. The error may be a non-fatal Warning, in which case the density
// is valid.
func (kf *FourierFilter) noiseDensity(noise Noise) (FourierDensity, error) {
	enc := kf.belief.Encoding()
	switch n := noise.(type) {
	case FourierDensity:
		if n.Encoding() == enc {
			if n.CoeffCount() == kf.count {
				return n, nil
			}
			return n.Truncate(kf.count)
		}
		return n.Transform(enc, kf.count)
	case Density:
		return FourierFromDensity(n, kf.count, enc)
	}
	fd, err := FourierFromMoments(noise, kf.count)
	if err != nil {
		return FourierDensity{}, err
	}
	if enc == Identity {
		return fd, nil
	}
	return fd.Transform(enc, kf.count)
}

// Update multiplies the belief by the measurement likelihood fitted as a
// density and truncates back to the filter's count. A likelihood that is
// zero everywhere on the fitting grid degenerates the posterior and leaves
// the belief untouched.
func (kf *FourierFilter) Update(l Likelihood, measurement float64) error {
	enc := kf.belief.Encoding()
	lfd, err := FourierFromFunction(func(θ float64) float64 { return l(measurement, θ) }, kf.count, enc)
	if err != nil && !IsWarning(err) {
		if errors.Is(err, ErrNormalization) {
			return fmt.Errorf("Update: %w: likelihood is zero on the fitting grid", ErrDegenerateWeights)
		}
		return err
	}
	warns := []error{err}
	posterior, err := kf.belief.Multiply(lfd)
	if err != nil && !IsWarning(err) {
		return err
	}
	warns = append(warns, err)
	truncated, err := posterior.Truncate(kf.count)
	if err != nil && !IsWarning(err) {
		return err
	}
	warns = append(warns, err)
	kf.belief = truncated
	return errors.Join(warns...)
}

// String implements the Stringer interface.
func (kf *FourierFilter) String() string {
	return fmt.Sprintf("FourierFilter{%v, n=%d}", kf.belief.Encoding(), kf.count)
}
