package gocircular

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// ResamplingScheme selects how a weighted sample set is converted back into
// an equally weighted one.
type ResamplingScheme uint8

const (
	// SystematicResampling draws a single uniform offset and walks the
	// cumulative weights with equally spaced probes. Lowest variance and
	// O(n+k) time.
	SystematicResampling ResamplingScheme = iota + 1
	// SimpleResampling draws independent uniforms, sorts them and walks the
	// cumulative weights once. Equivalent to k independent categorical
	// draws.
	SimpleResampling
)

// String implements the Stringer interface.
func (s ResamplingScheme) String() string {
	switch s {
	case SystematicResampling:
		return "systematic"
	case SimpleResampling:
		return "simple"
	}
	return "unknown"
}

// searchCum returns the index of the first cumulative weight strictly above
// u, clamped to the last index so u == total stays in range.
func searchCum(cum []float64, u float64) int {
	i := sort.Search(len(cum), func(j int) bool { return cum[j] > u })
	if i >= len(cum) {
		i = len(cum) - 1
	}
	return i
}

// resampleIndices draws count ancestor indices from the categorical
// distribution given by cumWeights. dst is reused when it has capacity;
// weights need not be normalized.
func resampleIndices(scheme ResamplingScheme, rng *rand.Rand, cumWeights []float64, count int, dst []int) ([]int, error) {
	if len(cumWeights) == 0 {
		return nil, fmt.Errorf("resample: %w: empty sample set", ErrValidation)
	}
	if count < 0 {
		return nil, fmt.Errorf("resample: %w: count %d must be non-negative", ErrValidation, count)
	}
	total := cumWeights[len(cumWeights)-1]
	if total <= 0 {
		return nil, fmt.Errorf("resample: %w: weight total %g", ErrDegenerateWeights, total)
	}
	if rng == nil {
		rng = defaultRNG()
	}
	if cap(dst) < count {
		dst = make([]int, count)
	}
	dst = dst[:count]
	switch scheme {
	case SimpleResampling:
		u := make([]float64, count)
		for i := range u {
			u[i] = rng.Float64() * total
		}
		sort.Float64s(u)
		idx := 0
		for i, probe := range u {
			for idx < len(cumWeights)-1 && cumWeights[idx] <= probe {
				idx++
			}
			dst[i] = idx
		}
	case SystematicResampling:
		u1 := rng.Float64()
		idx := 0
		for j := range dst {
			probe := (u1 + float64(j)) * total / float64(count)
			for idx < len(cumWeights)-1 && cumWeights[idx] <= probe {
				idx++
			}
			dst[j] = idx
		}
	default:
		return nil, fmt.Errorf("resample: %w: unknown scheme %d", ErrValidation, scheme)
	}
	return dst, nil
}

// ResampleSimple draws count positions from the weighted support with
// independently drawn uniforms.
func ResampleSimple(rng *rand.Rand, support, cumWeights []float64, count int) ([]float64, error) {
	return resampleSupport(SimpleResampling, rng, support, cumWeights, count)
}

// ResampleSystematic draws count positions from the weighted support with a
// single shared uniform offset.
func ResampleSystematic(rng *rand.Rand, support, cumWeights []float64, count int) ([]float64, error) {
	return resampleSupport(SystematicResampling, rng, support, cumWeights, count)
}

func resampleSupport(scheme ResamplingScheme, rng *rand.Rand, support, cumWeights []float64, count int) ([]float64, error) {
	if err := checkSameLen("support", support, "cumWeights", cumWeights); err != nil {
		return nil, err
	}
	idx, err := resampleIndices(scheme, rng, cumWeights, count, nil)
	if err != nil {
		return nil, err
	}
	out := make([]float64, count)
	for i, j := range idx {
		out[i] = support[j]
	}
	return out, nil
}
