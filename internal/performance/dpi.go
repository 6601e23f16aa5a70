package performance

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"jcurve-lab/internal/domain"
)

// DPI returns distributions to paid-in capital: sum(distributions) /
// sum(capitalCalls). Capital calls are positive magnitudes.
func DPI(distributions, capitalCalls []float64) (float64, error) {
	paidIn := floats.Sum(capitalCalls)
	if paidIn == 0 {
		return 0, fmt.Errorf("%w: capital calls sum to zero", domain.ErrDivision)
	}
	return floats.Sum(distributions) / paidIn, nil
}

// SplitCashFlows separates signed amounts into distributions and capital
// calls. Both outputs have the length of amounts; calls are returned as
// positive magnitudes.
func SplitCashFlows(amounts []float64) (distributions, capitalCalls []float64) {
	distributions = make([]float64, len(amounts))
	capitalCalls = make([]float64, len(amounts))
	for i, a := range amounts {
		if a > 0 {
			distributions[i] = a
		} else if a < 0 {
			capitalCalls[i] = -a
		}
	}
	return distributions, capitalCalls
}
