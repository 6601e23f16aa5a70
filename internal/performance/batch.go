package performance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"jcurve-lab/internal/aggregate"
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/observability"
)

// Summary describes the distribution of a metric across series.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P5    float64 `json:"p5"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
}

// BatchResult holds per-series metrics for a batch of trials.
type BatchResult struct {
	Metrics      []domain.PerformanceMetrics `json:"metrics"` // by trial index
	UndefinedIRR int                         `json:"undefined_irr"`
	UndefinedDPI int                         `json:"undefined_dpi"`
	IRR          Summary                     `json:"irr"`
	DPI          Summary                     `json:"dpi"`
}

// Calculator evaluates metrics with a fixed solver and records failures.
type Calculator struct {
	solver  Solver
	metrics *observability.Metrics
}

// NewCalculator creates a calculator. A zero solver uses DefaultSolver.
func NewCalculator(solver Solver, metrics *observability.Metrics) *Calculator {
	if solver == (Solver{}) {
		solver = DefaultSolver
	}
	return &Calculator{solver: solver, metrics: metrics}
}

// Solver returns the configured solver.
func (c *Calculator) Solver() Solver {
	return c.solver
}

// Evaluate computes IRR and DPI for a signed cash-flow series using
// DefaultSolver.
func Evaluate(amounts []float64) domain.PerformanceMetrics {
	return NewCalculator(DefaultSolver, nil).Evaluate(amounts)
}

// Evaluate computes IRR and DPI for a signed cash-flow series. A metric
// that cannot be computed is left undefined with its error message.
func (c *Calculator) Evaluate(amounts []float64) domain.PerformanceMetrics {
	var m domain.PerformanceMetrics

	if irr, err := c.solver.IRR(amounts); err != nil {
		m.IRRError = err.Error()
		c.metrics.RecordMetricFailure(observability.MetricIRR)
	} else {
		m.IRR = &irr
	}

	dist, calls := SplitCashFlows(amounts)
	if dpi, err := DPI(dist, calls); err != nil {
		m.DPIError = err.Error()
		c.metrics.RecordMetricFailure(observability.MetricDPI)
	} else {
		m.DPI = &dpi
	}

	return m
}

// EvaluateTrials evaluates every trial. Failures on one trial never abort
// the batch.
func (c *Calculator) EvaluateTrials(trials []*domain.Trial) BatchResult {
	res := BatchResult{Metrics: make([]domain.PerformanceMetrics, len(trials))}
	irrs := make([]float64, 0, len(trials))
	dpis := make([]float64, 0, len(trials))

	for i, t := range trials {
		if t == nil {
			continue
		}
		m := c.Evaluate(t.CashFlows.Amounts())
		res.Metrics[i] = m
		if m.IRR != nil {
			irrs = append(irrs, *m.IRR)
		} else {
			res.UndefinedIRR++
		}
		if m.DPI != nil {
			dpis = append(dpis, *m.DPI)
		} else {
			res.UndefinedDPI++
		}
	}

	res.IRR = Summarize(irrs)
	res.DPI = Summarize(dpis)
	return res
}

// Summarize returns count, mean and P5/P50/P95 of values. NaN values are
// ignored. An empty input yields a zero Summary.
func Summarize(values []float64) Summary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return Summary{}
	}
	sort.Float64s(sorted)

	return Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P5:    aggregate.Percentile(sorted, 0.05),
		P50:   aggregate.Percentile(sorted, 0.50),
		P95:   aggregate.Percentile(sorted, 0.95),
	}
}
