package gocircular

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentSummaries(t *testing.T) {
	m := cmplx.Rect(0.5, 2)
	assert.InDelta(t, 2, MeanDirection(m), 1e-12)
	assert.InDelta(t, 0.5, CircularVariance(m), 1e-12)
	assert.InDelta(t, math.Sqrt(2*math.Ln2), CircularStd(m), 1e-12)

	assert.InDelta(t, 2*math.Pi-0.5, MeanDirection(cmplx.Rect(1, -0.5)), 1e-12)
	if !math.IsInf(CircularStd(0), 1) {
		t.Fatal("flat moment must diverge")
	}
	if CircularStd(1) != 0 {
		t.Fatal("point mass must have zero spread")
	}
	if CircularVariance(complex(1.0000001, 0)) != 0 {
		t.Fatal("variance must clamp at zero")
	}
}

func TestScatterMatrix(t *testing.T) {
	s, err := ScatterMatrix(CircularUniform{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.At(0, 0), 1e-15)
	assert.InDelta(t, 0, s.At(0, 1), 1e-15)
	assert.InDelta(t, 0.5, s.At(1, 1), 1e-15)

	east, err := NewDiscreteDistribution([]float64{0}, []float64{1})
	require.NoError(t, err)
	s, err = ScatterMatrix(east)
	require.NoError(t, err)
	assert.InDelta(t, 1, s.At(0, 0), 1e-12)
	assert.InDelta(t, 0, s.At(1, 1), 1e-12)

	north, err := NewDiscreteDistribution([]float64{math.Pi / 2}, []float64{1})
	require.NoError(t, err)
	s, err = ScatterMatrix(north)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.At(0, 0), 1e-12)
	assert.InDelta(t, 1, s.At(1, 1), 1e-12)

	vm, _ := NewVonMises(1, 2)
	s, err = ScatterMatrix(vm)
	require.NoError(t, err)
	assert.InDelta(t, 1, s.At(0, 0)+s.At(1, 1), 1e-12)

	lfd, _ := NewUniformFourier(3, Log)
	if _, err := ScatterMatrix(lfd); !errors.Is(err, ErrUnsupported) {
		t.Fatal("log encoded source must propagate its moment error")
	}
}

func TestDistancesCoincide(t *testing.T) {
	vm, _ := NewVonMises(1, 2)
	assert.InDelta(t, 0, HellingerDistance(vm, vm, 0), 1e-5)
	assert.InDelta(t, 0, TotalVariationDistance(vm, vm, 0), 1e-12)
	assert.InDelta(t, 0, KullbackLeibler(vm, vm, 0), 1e-12)
}

func TestDistancesSeparate(t *testing.T) {
	p, _ := NewVonMises(1, 2)
	q, _ := NewVonMises(4, 1)

	h := HellingerDistance(p, q, 0)
	if h <= 0 || h >= 1 {
		t.Fatalf("Hellinger = %g, want inside (0, 1)", h)
	}
	assert.InDelta(t, h, HellingerDistance(q, p, 0), 1e-12)

	tv := TotalVariationDistance(p, q, 0)
	if tv <= 0 || tv >= 1 {
		t.Fatalf("total variation = %g, want inside (0, 1)", tv)
	}
	assert.InDelta(t, tv, TotalVariationDistance(q, p, 0), 1e-12)

	if kl := KullbackLeibler(p, q, 0); kl <= 0 {
		t.Fatalf("KL = %g, want positive", kl)
	}

	// Near-disjoint densities almost reach the TV ceiling.
	a, _ := NewVonMises(1, 5)
	b, _ := NewVonMises(1+math.Pi, 5)
	if tv := TotalVariationDistance(a, b, 0); tv < 0.9 {
		t.Fatalf("antipodal TV = %g, want close to 1", tv)
	}
}

func TestKullbackLeiblerClosedForm(t *testing.T) {
	// For equal concentrations, KL(p‖q) = κ·|m₁|·(1 - cos(μ₁-μ₂)).
	p, _ := NewVonMises(1, 2)
	q, _ := NewVonMises(1.5, 2)
	m1, err := p.TrigonometricMoment(1)
	require.NoError(t, err)
	want := 2 * cmplx.Abs(m1) * (1 - math.Cos(0.5))
	assert.InDelta(t, want, KullbackLeibler(p, q, 0), 1e-4)
	assert.InDelta(t, want, KullbackLeibler(p, q, 4096), 1e-6)
}

func TestKullbackLeiblerFloorsZeroTarget(t *testing.T) {
	q, err := NewPiecewiseConstant([]float64{0.5, 0.5, 0, 0})
	require.NoError(t, err)
	kl := KullbackLeibler(CircularUniform{}, q, 0)
	if math.IsInf(kl, 0) || math.IsNaN(kl) {
		t.Fatalf("KL = %g, want finite", kl)
	}
	if kl < 10 {
		t.Fatalf("KL = %g, want large against a vanishing target", kl)
	}
}
