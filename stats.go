package gocircular

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
)

// MeanDirection returns the direction of a first trigonometric moment in
// [0, 2π).
func MeanDirection(m complex128) float64 {
	return WrapTo2Pi(cmplx.Phase(m))
}

// CircularVariance returns 1 - |m1|, in [0, 1]. Zero means all mass at one
// angle, one means no preferred direction.
func CircularVariance(m complex128) float64 {
	v := 1 - cmplx.Abs(m)
	if v < 0 {
		return 0
	}
	return v
}

// CircularStd returns the circular standard deviation √(-2·ln|m1|). It
// diverges as the density flattens.
func CircularStd(m complex128) float64 {
	r := cmplx.Abs(m)
	if r <= 0 {
		return math.Inf(1)
	}
	if r >= 1 {
		return 0
	}
	return math.Sqrt(-2 * math.Log(r))
}

// ScatterMatrix returns the 2×2 second-moment matrix of the unit-vector
// embedding E[(cos θ, sin θ)ᵀ(cos θ, sin θ)], determined by the second
// trigonometric moment alone. Its trace is always 1.
func ScatterMatrix(src Noise) (*mat.SymDense, error) {
	m2, err := src.TrigonometricMoment(2)
	if err != nil {
		return nil, err
	}
	return mat.NewSymDense(2, []float64{
		(1 + real(m2)) / 2, imag(m2) / 2,
		imag(m2) / 2, (1 - real(m2)) / 2,
	}), nil
}

// distanceGrid evaluates both densities on a closed grid for the trapezoid
// rule. gridSize ≤ 0 selects the default resolution.
func distanceGrid(p, q Density, gridSize int) (x, pv, qv []float64) {
	if gridSize <= 0 {
		gridSize = 1000
	}
	x = closedGrid(gridSize)
	return x, p.PDF(x), q.PDF(x)
}

// HellingerDistance returns the Hellinger distance between two circular
// densities, computed on a grid. It is symmetric and lies in [0, 1].
func HellingerDistance(p, q Density, gridSize int) float64 {
	x, pv, qv := distanceGrid(p, q, gridSize)
	for i := range pv {
		prod := pv[i] * qv[i]
		if prod < 0 {
			prod = 0
		}
		pv[i] = math.Sqrt(prod)
	}
	affinity := integrate.Trapezoidal(x, pv)
	h2 := 1 - affinity
	if h2 < 0 {
		h2 = 0
	}
	return math.Sqrt(h2)
}

// TotalVariationDistance returns ∫|p-q|/2 on a grid, the largest
// probability any event can differ by.
func TotalVariationDistance(p, q Density, gridSize int) float64 {
	x, pv, qv := distanceGrid(p, q, gridSize)
	for i := range pv {
		pv[i] = math.Abs(pv[i] - qv[i])
	}
	return integrate.Trapezoidal(x, pv) / 2
}

// KullbackLeibler returns ∫p·ln(p/q) on a grid. Points where p vanishes
// contribute nothing; q is floored to keep the logarithm finite.
func KullbackLeibler(p, q Density, gridSize int) float64 {
	x, pv, qv := distanceGrid(p, q, gridSize)
	for i := range pv {
		if pv[i] <= 0 {
			pv[i] = 0
			continue
		}
		qi := qv[i]
		if qi < logFloor {
			qi = logFloor
		}
		pv[i] *= math.Log(pv[i] / qi)
	}
	return integrate.Trapezoidal(x, pv)
}
