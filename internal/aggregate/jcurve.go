package aggregate

// BreakEvenPeriod returns the first 1-based period whose cumulative value is
// non-negative after the curve has gone negative, or 0 if it never recovers.
// A curve that never dips counts as breaking even in period 1.
func BreakEvenPeriod(cumulative []float64) int {
	dipped := false
	for i, v := range cumulative {
		if v < 0 {
			dipped = true
			continue
		}
		if dipped || i == 0 {
			return i + 1
		}
	}
	return 0
}

// Trough returns the minimum cumulative value and its 1-based period.
// Returns (0, 0) for an empty series.
func Trough(cumulative []float64) (float64, int) {
	if len(cumulative) == 0 {
		return 0, 0
	}
	minVal, minPeriod := cumulative[0], 1
	for i, v := range cumulative[1:] {
		if v < minVal {
			minVal, minPeriod = v, i+2
		}
	}
	return minVal, minPeriod
}
