package gocircular

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscreteFilterValidation(t *testing.T) {
	if _, err := NewDiscreteFilter(0, nil); !errors.Is(err, ErrValidation) {
		t.Fatal("zero particle count accepted")
	}
	kf, err := NewDiscreteFilter(64, nil)
	require.NoError(t, err)
	belief := kf.Estimate()
	if belief.Len() != 64 {
		t.Fatalf("initial belief holds %d particles, want 64", belief.Len())
	}
	for _, w := range belief.Weights() {
		assert.InDelta(t, 1.0/64, w, 1e-15)
	}
}

func TestDiscreteFilterSetState(t *testing.T) {
	kf, err := NewDiscreteFilter(500, rand.New(rand.NewPCG(21, 22)))
	require.NoError(t, err)

	// A discrete belief is adopted as is, whatever its size.
	d, err := NewDiscreteDistribution([]float64{0.5, 1.5, 3}, []float64{0.5, 0.3, 0.2})
	require.NoError(t, err)
	require.NoError(t, kf.SetState(d))
	if kf.Estimate().Len() != 3 {
		t.Fatalf("belief holds %d particles, want 3", kf.Estimate().Len())
	}

	// A sampleable state is drawn from with the filter's particle count.
	vm, _ := NewVonMises(2, 5)
	require.NoError(t, kf.SetState(vm))
	if kf.Estimate().Len() != 500 {
		t.Fatalf("belief holds %d particles, want 500", kf.Estimate().Len())
	}
	μ, err := kf.Estimate().MeanDirection()
	require.NoError(t, err)
	assert.InDelta(t, 0, AngularError(2, μ), 0.1)

	// Anything else collapses to the five atom approximation.
	fd, err := FourierFromDensity(vm, 11, Identity)
	require.NoError(t, err)
	require.NoError(t, kf.SetState(fd))
	if kf.Estimate().Len() != 5 {
		t.Fatalf("belief holds %d particles, want 5", kf.Estimate().Len())
	}
	m1, err := kf.Estimate().TrigonometricMoment(1)
	require.NoError(t, err)
	want, _ := vm.TrigonometricMoment(1)
	assert.InDelta(t, real(want), real(m1), 1e-8)
	assert.InDelta(t, imag(want), imag(m1), 1e-8)
}

func TestDiscreteFilterPredictSingleAtomExact(t *testing.T) {
	kf, err := NewDiscreteFilter(16, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	d, err := NewDiscreteDistribution([]float64{1, 2, 3}, []float64{0.5, 0.3, 0.2})
	require.NoError(t, err)
	require.NoError(t, kf.SetState(d))
	wBefore := kf.Estimate().Weights()

	// A single noise atom is a deterministic shift with no resampling.
	shift, err := NewDiscreteDistribution([]float64{0.3}, []float64{1})
	require.NoError(t, err)
	require.NoError(t, kf.PredictIdentity(shift))

	belief := kf.Estimate()
	support := belief.Support()
	for i, want := range []float64{1.3, 2.3, 3.3} {
		assert.InDelta(t, want, support[i], 1e-12)
	}
	wAfter := belief.Weights()
	for i := range wBefore {
		if wBefore[i] != wAfter[i] {
			t.Fatalf("weight[%d] changed from %g to %g", i, wBefore[i], wAfter[i])
		}
	}
}

func TestDiscreteFilterPredictCrossProduct(t *testing.T) {
	kf, err := NewDiscreteFilter(16, rand.New(rand.NewPCG(2, 3)))
	require.NoError(t, err)
	d, err := NewDiscreteDistribution([]float64{1, 2, 3}, []float64{0.5, 0.3, 0.2})
	require.NoError(t, err)
	require.NoError(t, kf.SetState(d))

	vm, _ := NewVonMises(0, 4)
	require.NoError(t, kf.PredictNonlinear(func(θ float64) float64 { return 2 * θ }, vm))

	belief := kf.Estimate()
	if belief.Len() != 3 {
		t.Fatalf("prediction resampled to %d particles, want the belief size 3", belief.Len())
	}
	for _, w := range belief.Weights() {
		assert.InDelta(t, 1.0/3, w, 1e-15)
	}
}

func TestDiscreteFilterPredictStatistical(t *testing.T) {
	kf, err := NewDiscreteFilter(400, rand.New(rand.NewPCG(21, 22)))
	require.NoError(t, err)
	prior, _ := NewVonMises(1, 50)
	require.NoError(t, kf.SetState(prior))

	noise, _ := NewVonMises(0, 20)
	require.NoError(t, kf.PredictNonlinear(func(θ float64) float64 { return θ + 0.5 }, noise))

	μ, err := kf.Estimate().MeanDirection()
	require.NoError(t, err)
	assert.InDelta(t, 0, AngularError(1.5, μ), 0.1)
}

func TestDiscreteFilterUpdate(t *testing.T) {
	kf, err := NewDiscreteFilter(200, rand.New(rand.NewPCG(5, 5)))
	require.NoError(t, err)

	l := func(z, θ float64) float64 { return math.Exp(2 * math.Cos(z-θ)) }
	require.NoError(t, kf.UpdateNonlinear(l, 2))
	μ, err := kf.Estimate().MeanDirection()
	require.NoError(t, err)
	assert.InDelta(t, 0, AngularError(2, μ), 0.05)

	// A vanishing likelihood leaves the belief untouched.
	wBefore := kf.Estimate().Weights()
	err = kf.UpdateNonlinear(func(z, θ float64) float64 { return 0 }, 2)
	if !errors.Is(err, ErrDegenerateWeights) {
		t.Fatalf("zero likelihood raised %v, want ErrDegenerateWeights", err)
	}
	wAfter := kf.Estimate().Weights()
	for i := range wBefore {
		if wBefore[i] != wAfter[i] {
			t.Fatalf("weight[%d] changed on a degenerate update", i)
		}
	}
}

func TestDiscreteFilterUpdateIndicatorIsExact(t *testing.T) {
	kf, err := NewDiscreteFilter(21, rand.New(rand.NewPCG(10, 11)))
	require.NoError(t, err)
	target := kf.Estimate().Support()[1]

	// An indicator likelihood concentrates all mass on one grid point with
	// no rounding at all.
	l := func(z, θ float64) float64 {
		if θ == target {
			return 1
		}
		return 0
	}
	require.NoError(t, kf.UpdateNonlinear(l, 0))
	for i, w := range kf.Estimate().Weights() {
		if i == 1 && w != 1 {
			t.Fatalf("selected weight = %g, want exactly 1", w)
		}
		if i != 1 && w != 0 {
			t.Fatalf("weight[%d] = %g, want exactly 0", i, w)
		}
	}
}

func TestDiscreteFilterPredictNoiseFree(t *testing.T) {
	kf, err := NewDiscreteFilter(16, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	d, err := NewDiscreteDistribution([]float64{1, 2, 3}, []float64{0.5, 0.3, 0.2})
	require.NoError(t, err)
	require.NoError(t, kf.SetState(d))

	// Zero-spread noise under the identity transition is a perfect no-op.
	still, err := NewDiscreteDistribution([]float64{0}, []float64{1})
	require.NoError(t, err)
	require.NoError(t, kf.PredictIdentity(still))

	belief := kf.Estimate()
	assert.Equal(t, d.Support(), belief.Support())
	assert.Equal(t, d.Weights(), belief.Weights())
}

func TestDiscreteFilterNonAdditive(t *testing.T) {
	kf, err := NewDiscreteFilter(8, rand.New(rand.NewPCG(6, 7)))
	require.NoError(t, err)
	d, err := NewDiscreteDistribution([]float64{1}, []float64{1})
	require.NoError(t, err)
	require.NoError(t, kf.SetState(d))

	// The noise value 10 exceeds 2π. It must reach f unwrapped.
	f := func(θ, η float64) float64 { return θ + η/10 }
	require.NoError(t, kf.PredictNonlinearNonAdditive(f, []float64{10}, []float64{1}))
	assert.InDelta(t, 2, kf.Estimate().Support()[0], 1e-12)

	if err := kf.PredictNonlinearNonAdditive(f, nil, nil); !errors.Is(err, ErrValidation) {
		t.Fatal("empty noise support accepted")
	}
	if err := kf.PredictNonlinearNonAdditive(f, []float64{1, 2}, []float64{1}); !errors.Is(err, ErrValidation) {
		t.Fatal("mismatched noise lengths accepted")
	}
	if err := kf.PredictNonlinearNonAdditive(f, []float64{1}, []float64{-1}); !errors.Is(err, ErrValidation) {
		t.Fatal("negative noise weight accepted")
	}
	if err := kf.PredictNonlinearNonAdditive(f, []float64{1, 2}, []float64{0, 0}); !errors.Is(err, ErrDegenerateWeights) {
		t.Fatal("zero noise weights accepted")
	}
}

func TestDiscreteFilterSetResampling(t *testing.T) {
	kf, err := NewDiscreteFilter(32, rand.New(rand.NewPCG(8, 9)))
	require.NoError(t, err)
	if err := kf.SetResampling(ResamplingScheme(0)); !errors.Is(err, ErrValidation) {
		t.Fatal("unknown scheme accepted")
	}
	require.NoError(t, kf.SetResampling(SimpleResampling))
	vm, _ := NewVonMises(0, 2)
	require.NoError(t, kf.PredictIdentity(vm))
	if kf.Estimate().Len() != 32 {
		t.Fatal("prediction changed the particle count")
	}
}

func TestDiscreteFilterString(t *testing.T) {
	kf, err := NewDiscreteFilter(5, nil)
	require.NoError(t, err)
	if kf.String() != "DiscreteFilter{n=5, systematic}" {
		t.Fatalf("String() = %q", kf.String())
	}
}
