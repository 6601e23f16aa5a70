package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile uses linear interpolation between order statistics.
// sorted must be pre-sorted ASC.
// q is the quantile (0.05 = 5th percentile); position = q*(n-1).
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := q * float64(n-1)
	lower := int(math.Floor(idx))
	if lower < 0 {
		return sorted[0]
	}
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Mean calculates the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Quantiles returns the requested quantiles of values without modifying it.
func Quantiles(values []float64, qs ...float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Percentile(sorted, q)
	}
	return out
}
