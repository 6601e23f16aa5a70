package reporting

import (
	"errors"
	"strconv"
	"time"

	"jcurve-lab/internal/aggregate"
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/observability"
	"jcurve-lab/internal/orchestrator"
	"jcurve-lab/internal/performance"
)

// ErrNoResult is returned when a report is requested without run output.
var ErrNoResult = errors.New("no run result")

// Generator produces reports from run results.
type Generator struct {
	metrics *observability.Metrics
	now     func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. metrics may be nil.
func NewGenerator(metrics *observability.Metrics) *Generator {
	return &Generator{
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from a completed run.
func (g *Generator) Generate(result *orchestrator.Result) (*Report, error) {
	if result == nil || result.Aggregate == nil {
		return nil, ErrNoResult
	}

	report := &Report{
		GeneratedAt:      g.now(),
		RunID:            result.RunID,
		Duration:         result.Duration,
		Parameters:       summarizeParams(result.Params, result.Mode),
		Scenarios:        scenarioRows(result.Scenarios, result.ScenarioMetrics),
		Percentiles:      result.Aggregate.Percentiles,
		Bands:            bandRows(result.Aggregate),
		MeanCurve:        summarizeCurve(result.Aggregate.Means()),
		TrialPerformance: trialPerformance(len(result.Trials), result.TrialMetrics),
	}

	g.metrics.RecordReport()
	return report, nil
}

func summarizeParams(p domain.SimulationParameters, mode domain.ScheduleMode) ParameterSummary {
	seed := "unseeded"
	if p.RandomSeed != nil {
		seed = strconv.FormatInt(*p.RandomSeed, 10)
	}
	return ParameterSummary{
		Years:              p.Years,
		Commitments:        p.Commitments,
		PeakDrawdownYear:   p.PeakDrawdownYear,
		CapitalCallPattern: p.CapitalCallPattern,
		NoiseLow:           p.Noise().Low,
		NoiseHigh:          p.Noise().High,
		NSimulations:       p.NSimulations,
		Seed:               seed,
		Mode:               string(mode),
	}
}

func scenarioRows(schedules []domain.ScenarioSchedule, metrics []domain.PerformanceMetrics) []ScenarioRow {
	rows := make([]ScenarioRow, len(schedules))
	for i, s := range schedules {
		row := ScenarioRow{
			Scenario: string(s.Scenario),
			Mode:     string(s.Mode),
			Curve:    summarizeCurve(s.Cumulative),
		}
		if i < len(metrics) {
			m := metrics[i]
			row.IRR, row.DPI = m.IRR, m.DPI
			row.IRRError, row.DPIError = m.IRRError, m.DPIError
		}
		rows[i] = row
	}
	return rows
}

func bandRows(agg *domain.AggregateResult) []BandRow {
	rows := make([]BandRow, len(agg.Periods))
	for i, p := range agg.Periods {
		rows[i] = BandRow{Period: p.Period, Mean: p.Mean, Low: p.Low, High: p.High}
	}
	return rows
}

func summarizeCurve(cumulative []float64) CurveSummary {
	trough, troughPeriod := aggregate.Trough(cumulative)
	var final float64
	if len(cumulative) > 0 {
		final = cumulative[len(cumulative)-1]
	}
	return CurveSummary{
		TroughValue:     trough,
		TroughPeriod:    troughPeriod,
		BreakEvenPeriod: aggregate.BreakEvenPeriod(cumulative),
		Final:           final,
	}
}

func trialPerformance(trials int, batch performance.BatchResult) TrialPerformanceSection {
	return TrialPerformanceSection{
		Trials:       trials,
		UndefinedIRR: batch.UndefinedIRR,
		UndefinedDPI: batch.UndefinedDPI,
		IRR:          distributionRow(batch.IRR),
		DPI:          distributionRow(batch.DPI),
	}
}

func distributionRow(s performance.Summary) DistributionRow {
	return DistributionRow{Count: s.Count, Mean: s.Mean, P5: s.P5, P50: s.P50, P95: s.P95}
}
