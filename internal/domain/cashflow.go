package domain

import "fmt"

// CashFlow is a signed amount in one period. Negative = capital call,
// positive = distribution.
type CashFlow struct {
	Period int     `json:"period"` // 1-based
	Amount float64 `json:"amount"`
}

// CashFlowSeries is an ordered per-period series with contiguous periods
// starting at 1.
type CashFlowSeries []CashFlow

// CumulativeSeries is the running prefix sum of a CashFlowSeries.
// cumulative[0] equals the first cash flow.
type CumulativeSeries []float64

// NewCashFlowSeries builds a series from raw per-period amounts.
func NewCashFlowSeries(amounts []float64) CashFlowSeries {
	s := make(CashFlowSeries, len(amounts))
	for i, a := range amounts {
		s[i] = CashFlow{Period: i + 1, Amount: a}
	}
	return s
}

// Amounts returns the signed amounts in period order.
func (s CashFlowSeries) Amounts() []float64 {
	out := make([]float64, len(s))
	for i, cf := range s {
		out[i] = cf.Amount
	}
	return out
}

// Cumulative returns the running prefix sum.
func (s CashFlowSeries) Cumulative() CumulativeSeries {
	return Accumulate(s.Amounts())
}

// Validate checks that periods are contiguous from 1 and that the length
// matches years.
func (s CashFlowSeries) Validate(years int) error {
	if len(s) != years {
		return fmt.Errorf("%w: series has %d periods, expected %d", ErrValidation, len(s), years)
	}
	for i, cf := range s {
		if cf.Period != i+1 {
			return fmt.Errorf("%w: period %d at position %d, expected %d", ErrValidation, cf.Period, i, i+1)
		}
	}
	return nil
}

// Accumulate returns the running prefix sum of amounts.
func Accumulate(amounts []float64) CumulativeSeries {
	out := make(CumulativeSeries, len(amounts))
	sum := 0.0
	for i, a := range amounts {
		sum += a
		out[i] = sum
	}
	return out
}

// Final returns the last cumulative value, or 0 for an empty series.
func (c CumulativeSeries) Final() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1]
}
