package gocircular

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// WrapTo2Pi canonicalizes an angle into [0, 2π).
func WrapTo2Pi(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// AngularError returns the absolute shortest distance between two angles on
// the circle, in [0, π].
func AngularError(α, β float64) float64 {
	d := math.Abs(WrapTo2Pi(α) - WrapTo2Pi(β))
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// wrapAllTo2Pi returns a new slice with every angle canonicalized.
func wrapAllTo2Pi(angles []float64) []float64 {
	wrapped := make([]float64, len(angles))
	for i, a := range angles {
		wrapped[i] = WrapTo2Pi(a)
	}
	return wrapped
}

// uniformGrid returns n equally spaced angles 2πj/n starting at zero.
func uniformGrid(n int) []float64 {
	grid := make([]float64, n)
	for j := range grid {
		grid[j] = 2 * math.Pi * float64(j) / float64(n)
	}
	return grid
}

// closedGrid returns n+1 equally spaced angles from 0 to 2π inclusive, the
// sampling needed by the trapezoid rule over one full period.
func closedGrid(n int) []float64 {
	grid := make([]float64, n+1)
	for j := range grid {
		grid[j] = 2 * math.Pi * float64(j) / float64(n)
	}
	return grid
}

// cumulativeWeights returns the running sum of weights.
func cumulativeWeights(weights []float64) []float64 {
	return floats.CumSum(make([]float64, len(weights)), weights)
}

// nextPow2 returns the smallest power of two that is at least n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// defaultRNG returns the deterministic source used whenever the caller
// passes a nil generator. Fixed seeds keep such runs reproducible.
func defaultRNG() *rand.Rand {
	return rand.New(rand.NewPCG(0x9e3779b97f4a7c15, 0xda942042e4dd58b5))
}

// clampUnit clamps x into [-1, 1] so that acos never sees a rounding spill.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
