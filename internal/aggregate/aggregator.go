// Package aggregate reduces Monte Carlo trials into per-period mean and
// percentile bands.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"jcurve-lab/internal/domain"
)

// ErrNoTrials is returned when no trials are available for aggregation.
var ErrNoTrials = errors.New("no trials available for aggregation")

// Aggregate computes the per-period mean and percentile band across trials.
// percentiles is either empty (defaults to 0.05, 0.95) or exactly {low, high}.
// Every period is reduced independently; all trials must be complete.
func Aggregate(trials []*domain.Trial, percentiles ...float64) (*domain.AggregateResult, error) {
	band, err := resolveBand(percentiles)
	if err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, ErrNoTrials
	}

	series := make([][]float64, len(trials))
	for i, t := range trials {
		if t == nil {
			return nil, fmt.Errorf("%w: trial %d is missing", domain.ErrValidation, i)
		}
		series[i] = t.Cumulative
	}
	return AggregateSeries(series, band[0], band[1])
}

// AggregateSeries reduces raw cumulative series indexed [trial][period-1].
func AggregateSeries(series [][]float64, low, high float64) (*domain.AggregateResult, error) {
	if len(series) == 0 {
		return nil, ErrNoTrials
	}
	if _, err := resolveBand([]float64{low, high}); err != nil {
		return nil, err
	}

	periods := len(series[0])
	for i, s := range series {
		if len(s) != periods {
			return nil, fmt.Errorf("%w: trial %d has %d periods, expected %d", domain.ErrValidation, i, len(s), periods)
		}
	}

	stats := make([]domain.PeriodStats, periods)
	column := make([]float64, len(series))
	for p := 0; p < periods; p++ {
		for t, s := range series {
			column[t] = s[p]
		}
		mean := Mean(column)

		sort.Float64s(column)
		stats[p] = domain.PeriodStats{
			Period: p + 1,
			Mean:   mean,
			Low:    Percentile(column, low),
			High:   Percentile(column, high),
		}
	}

	return &domain.AggregateResult{
		Percentiles:     [2]float64{low, high},
		Periods:         stats,
		TrialCumulative: series,
	}, nil
}

// resolveBand validates the requested percentiles and applies defaults.
func resolveBand(percentiles []float64) ([2]float64, error) {
	switch len(percentiles) {
	case 0:
		return [2]float64{domain.DefaultPercentileLow, domain.DefaultPercentileHigh}, nil
	case 2:
	default:
		return [2]float64{}, fmt.Errorf("%w: expected 2 percentiles, got %d", domain.ErrValidation, len(percentiles))
	}

	low, high := percentiles[0], percentiles[1]
	for _, q := range percentiles {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return [2]float64{}, fmt.Errorf("%w: percentile %g outside [0, 1]", domain.ErrValidation, q)
		}
	}
	if low > high {
		return [2]float64{}, fmt.Errorf("%w: low percentile %g above high percentile %g", domain.ErrValidation, low, high)
	}
	return [2]float64{low, high}, nil
}
