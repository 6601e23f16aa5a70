package domain

import (
	"math"
	"strconv"
)

// Default percentile band.
const (
	DefaultPercentileLow  = 0.05
	DefaultPercentileHigh = 0.95
)

// PeriodStats holds the cross-trial statistics of one period.
type PeriodStats struct {
	Period int     `json:"period"`
	Mean   float64 `json:"mean"`
	Low    float64 `json:"p_low"`
	High   float64 `json:"p_high"`
}

// AggregateResult is the per-period reduction of a set of trials.
// Read-only once computed.
type AggregateResult struct {
	Percentiles [2]float64    `json:"percentiles"` // {low, high}
	Periods     []PeriodStats `json:"periods"`

	// TrialCumulative holds the raw cumulative values, indexed [trial][period-1].
	TrialCumulative [][]float64 `json:"-"`
}

// AggregateRow is one row of the tabular output: a period with every trial's
// cumulative value followed by the statistics.
type AggregateRow struct {
	Period int
	Trials []float64
	Mean   float64
	Low    float64
	High   float64
}

// NumTrials returns the number of trials reduced into the result.
func (a *AggregateResult) NumTrials() int {
	return len(a.TrialCumulative)
}

// Means returns the per-period means in period order.
func (a *AggregateResult) Means() []float64 {
	out := make([]float64, len(a.Periods))
	for i, p := range a.Periods {
		out[i] = p.Mean
	}
	return out
}

// Rows returns the tabular view, ordered by period.
func (a *AggregateResult) Rows() []AggregateRow {
	rows := make([]AggregateRow, len(a.Periods))
	for i, p := range a.Periods {
		values := make([]float64, len(a.TrialCumulative))
		for t, series := range a.TrialCumulative {
			values[t] = series[i]
		}
		rows[i] = AggregateRow{
			Period: p.Period,
			Trials: values,
			Mean:   p.Mean,
			Low:    p.Low,
			High:   p.High,
		}
	}
	return rows
}

// SimulationLabel returns the column label of a 0-based trial index.
func SimulationLabel(index int) string {
	return "Sim_" + strconv.Itoa(index+1)
}

// PercentileLabel formats a quantile as a column label, e.g. 0.05 -> "P5",
// 0.975 -> "P97.5".
func PercentileLabel(q float64) string {
	// Rounded to 6 decimals so 0.07 prints as P7, not P7.000000000000001.
	return "P" + strconv.FormatFloat(math.Round(q*1e8)/1e6, 'f', -1, 64)
}
