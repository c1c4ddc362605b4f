package gocircular

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFourierFilter(t *testing.T) {
	if _, err := NewFourierFilter(10, Sqrt); !errors.Is(err, ErrValidation) {
		t.Fatal("even coefficient count accepted")
	}
	if _, err := NewFourierFilter(11, Encoding(9)); !errors.Is(err, ErrUnsupported) {
		t.Fatal("unknown encoding accepted")
	}
	kf, err := NewFourierFilter(31, Sqrt)
	require.NoError(t, err)
	if kf.Estimate().CoeffCount() != 31 || kf.Estimate().Encoding() != Sqrt {
		t.Fatalf("initial belief is %v", kf.Estimate())
	}
	if _, err := kf.EstimateMeanDirection(); !errors.Is(err, ErrValidation) {
		t.Fatal("uniform belief must have no mean direction")
	}
}

func TestFourierFilterSetState(t *testing.T) {
	kf, err := NewFourierFilter(31, Identity)
	require.NoError(t, err)

	s, _ := NewUniformFourier(31, Sqrt)
	if err := kf.SetState(s); !errors.Is(err, ErrValidation) {
		t.Fatal("mismatched encoding accepted")
	}

	vm, _ := NewVonMises(2, 1.5)
	fd, err := FourierFromMoments(vm, 11)
	require.NoError(t, err)
	require.NoError(t, kf.SetState(fd))
	if kf.Estimate().CoeffCount() != 31 {
		t.Fatalf("belief count = %d, want 31", kf.Estimate().CoeffCount())
	}
	want, _ := vm.TrigonometricMoment(1)
	got, _ := kf.Estimate().TrigonometricMoment(1)
	assert.InDelta(t, real(want), real(got), 1e-14)
	assert.InDelta(t, imag(want), imag(got), 1e-14)
}

func TestFourierFilterPredictUniformNoise(t *testing.T) {
	kf, err := NewFourierFilter(31, Identity)
	require.NoError(t, err)
	vm, _ := NewVonMises(2, 3)
	fd, err := FourierFromDensity(vm, 31, Identity)
	require.NoError(t, err)
	require.NoError(t, kf.SetState(fd))

	require.NoError(t, kf.Predict(CircularUniform{}))
	m1, err := kf.Estimate().TrigonometricMoment(1)
	require.NoError(t, err)
	if m1 != 0 {
		t.Fatalf("uniform noise must erase the first moment, got %v", m1)
	}
	if _, err := kf.EstimateMeanDirection(); !errors.Is(err, ErrValidation) {
		t.Fatal("uniform belief must have no mean direction")
	}
}

func TestFourierFilterPredictShifted(t *testing.T) {
	kf, err := NewFourierFilter(31, Identity)
	require.NoError(t, err)
	prior, _ := NewVonMises(1, 2)
	fd, err := FourierFromDensity(prior, 31, Identity)
	require.NoError(t, err)
	require.NoError(t, kf.SetState(fd))

	noise, _ := NewVonMises(0, 50)
	require.NoError(t, kf.PredictShifted(0.5, noise))
	μ, err := kf.EstimateMeanDirection()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, μ, 1e-9)
}

func TestFourierFilterUpdate(t *testing.T) {
	kf, err := NewFourierFilter(31, Sqrt)
	require.NoError(t, err)

	l := func(z, θ float64) float64 { return math.Exp(3 * math.Cos(z-θ)) }
	err = kf.Update(l, 2)
	require.True(t, IsWarning(err))
	μ, err := kf.EstimateMeanDirection()
	require.NoError(t, err)
	assert.InDelta(t, 2, μ, 1e-3)
	m1, _ := kf.Estimate().TrigonometricMoment(1)

	// The same evidence again doubles the concentration.
	err = kf.Update(l, 2)
	require.True(t, IsWarning(err))
	m1Next, _ := kf.Estimate().TrigonometricMoment(1)
	if cmplx.Abs(m1Next) <= cmplx.Abs(m1) {
		t.Fatalf("resultant length fell from %g to %g", cmplx.Abs(m1), cmplx.Abs(m1Next))
	}
}

func TestFourierFilterUpdateDegenerate(t *testing.T) {
	kf, err := NewFourierFilter(31, Sqrt)
	require.NoError(t, err)
	aBefore, _ := kf.Estimate().Coefficients()

	err = kf.Update(func(z, θ float64) float64 { return 0 }, 1)
	if !errors.Is(err, ErrDegenerateWeights) {
		t.Fatalf("zero likelihood raised %v, want ErrDegenerateWeights", err)
	}
	aAfter, _ := kf.Estimate().Coefficients()
	for i := range aBefore {
		if aBefore[i] != aAfter[i] {
			t.Fatalf("coefficient %d changed on a degenerate update", i)
		}
	}
}

func TestFourierFilterNoiseForms(t *testing.T) {
	kf, err := NewFourierFilter(31, Identity)
	require.NoError(t, err)
	vm, _ := NewVonMises(1, 2)
	fd, err := FourierFromDensity(vm, 31, Identity)
	require.NoError(t, err)
	require.NoError(t, kf.SetState(fd))

	// Noise already in the filter's encoding convolves exactly.
	wn, _ := NewWrappedNormal(0, 0.5)
	nfd, err := FourierFromDensity(wn, 31, Identity)
	require.NoError(t, err)
	require.NoError(t, kf.Predict(nfd))

	// A sqrt encoded noise density converts in closed form.
	sq, err := FourierFromDensity(wn, 31, Sqrt)
	require.NoError(t, err)
	require.NoError(t, kf.Predict(sq))

	// A log encoded one only converts on a grid.
	lg, err := FourierFromDensity(wn, 11, Log)
	require.True(t, IsWarning(err))
	err = kf.Predict(lg)
	require.True(t, IsWarning(err))

	// Moment-only noise models are read off directly.
	shift := momentNoise(func(n int) complex128 {
		σ := 0.3
		return cmplx.Rect(math.Exp(-float64(n*n)*σ*σ/2), float64(n)*0.2)
	})
	require.NoError(t, kf.Predict(shift))
}

func TestFourierFilterString(t *testing.T) {
	kf, err := NewFourierFilter(31, Sqrt)
	require.NoError(t, err)
	if kf.String() != "FourierFilter{sqrt, n=31}" {
		t.Fatalf("String() = %q", kf.String())
	}
}
