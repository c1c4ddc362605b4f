package gocircular

import "math"

// besselI0e returns the exponentially scaled modified Bessel function of the
// first kind of order zero, e^{-|x|}·I₀(x). The scaling keeps von Mises
// normalization finite for arbitrarily large concentrations.
func besselI0e(x float64) float64 {
	x = math.Abs(x)
	if x < 30 {
		// Power series: all terms positive, no cancellation.
		sum, term := 1.0, 1.0
		q := x * x / 4
		for k := 1; k < 200; k++ {
			term *= q / float64(k*k)
			sum += term
			if term < sum*1e-17 {
				break
			}
		}
		return math.Exp(-x) * sum
	}
	// Asymptotic expansion, accurate to better than 1e-12 for x ≥ 30.
	sum, term := 1.0, 1.0
	for k := 1; k <= 10; k++ {
		m := 2*float64(k) - 1
		term *= m * m / (8 * float64(k) * x)
		sum += term
	}
	return sum / math.Sqrt(2*math.Pi*x)
}

// logBesselI0 returns ln I₀(x) without overflow.
func logBesselI0(x float64) float64 {
	x = math.Abs(x)
	return x + math.Log(besselI0e(x))
}

// besselIRatios returns the ratios I_k(x)/I₀(x) for k = 0..n, computed with
// Miller's downward recurrence. x must be non-negative.
func besselIRatios(n int, x float64) []float64 {
	ratios := make([]float64, n+1)
	ratios[0] = 1
	if n == 0 || x == 0 {
		return ratios
	}
	// Start the recurrence far enough above n for the trial values to have
	// converged onto I by the time the stored orders are reached. For large
	// x the contaminating solution only decays like e^{(k²-start²)/x}, so
	// start grows with √x as well.
	start := n + int(math.Sqrt(40*float64(n+1))) + 10
	if s := int(math.Sqrt(float64(n*n)+40*x)) + 10; s > start {
		start = s
	}
	raw := make([]float64, n+1)
	hi, lo := 0.0, 1e-300 // trial I at orders start+1 and start
	for j := start; j >= 1; j-- {
		if j <= n {
			raw[j] = lo
		}
		hi, lo = lo, hi+2*float64(j)/x*lo
		if lo > 1e250 {
			hi *= 1e-250
			lo *= 1e-250
			for i := j; i <= n; i++ {
				raw[i] *= 1e-250
			}
		}
	}
	for k := 1; k <= n; k++ {
		ratios[k] = raw[k] / lo
	}
	return ratios
}
