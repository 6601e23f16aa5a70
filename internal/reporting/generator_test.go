package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/observability"
	"jcurve-lab/internal/orchestrator"
	"jcurve-lab/internal/schedule"
)

var fixedTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func runResult(t *testing.T) *orchestrator.Result {
	t.Helper()
	seed := int64(42)
	params := domain.SimulationParameters{
		Years:              10,
		Commitments:        100,
		PeakDrawdownYear:   4,
		CapitalCallPattern: []float64{0.4, 0.3, 0.2, 0.1},
		NSimulations:       20,
		RandomSeed:         &seed,
	}
	result, err := orchestrator.New(orchestrator.Options{}).Run(context.Background(), params)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func TestGenerator_Generate(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	gen := NewGenerator(metrics).WithClock(func() time.Time { return fixedTime })

	result := runResult(t)
	report, err := gen.Generate(result)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixedTime, report.GeneratedAt)
	}
	if report.RunID != result.RunID {
		t.Errorf("Expected RunID %s, got %s", result.RunID, report.RunID)
	}
	if report.Parameters.Seed != "42" {
		t.Errorf("Expected seed 42, got %s", report.Parameters.Seed)
	}
	if len(report.Scenarios) != 3 {
		t.Fatalf("Expected 3 scenario rows, got %d", len(report.Scenarios))
	}
	if len(report.Bands) != 10 {
		t.Errorf("Expected 10 band rows, got %d", len(report.Bands))
	}
	if report.TrialPerformance.Trials != 20 {
		t.Errorf("Expected 20 trials, got %d", report.TrialPerformance.Trials)
	}

	// Linear drawdowns at peak 4: -50, -37.5, -25, -12.5; trough -125 in year 4.
	base := report.Scenarios[0]
	if base.Scenario != "base" {
		t.Errorf("Expected base scenario first, got %s", base.Scenario)
	}
	if base.Curve.TroughValue != -125 || base.Curve.TroughPeriod != 4 {
		t.Errorf("Expected trough -125 in year 4, got %f in year %d", base.Curve.TroughValue, base.Curve.TroughPeriod)
	}
	if base.IRR == nil || base.DPI == nil {
		t.Error("Expected base scenario metrics to be defined")
	}

	if got := testutil.ToFloat64(metrics.ReportsGenerated); got != 1 {
		t.Errorf("Expected 1 report recorded, got %f", got)
	}
}

func TestGenerator_NoResult(t *testing.T) {
	gen := NewGenerator(nil)
	if _, err := gen.Generate(nil); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult, got %v", err)
	}
	if _, err := gen.Generate(&orchestrator.Result{}); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult for missing aggregate, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	gen := NewGenerator(nil).WithClock(func() time.Time { return fixedTime })
	report, err := gen.Generate(runResult(t))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# J-Curve Report",
		"Generated: 2024-01-15T12:00:00Z",
		"## Parameters",
		"| Capital Call Pattern | [0.40, 0.30, 0.20, 0.10] |",
		"| Seed | 42 |",
		"## Scenario Schedules",
		"| base | linear | -125.00 | 4 |",
		"## Monte Carlo Bands",
		"| Year | Mean | P5 | P95 |",
		"## Trial Performance",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: fixedTime, Percentiles: [2]float64{0.05, 0.95}})

	if !strings.Contains(md, "No scenario schedules available.") {
		t.Error("Expected empty scenarios message")
	}
	if !strings.Contains(md, "No Monte Carlo bands available.") {
		t.Error("Expected empty bands message")
	}
}

func TestRenderAggregateCSV(t *testing.T) {
	agg := &domain.AggregateResult{
		Percentiles: [2]float64{0.05, 0.95},
		Periods: []domain.PeriodStats{
			{Period: 1, Mean: -15, Low: -19.5, High: -10.5},
			{Period: 2, Mean: 5, Low: 0.5, High: 9.5},
		},
		TrialCumulative: [][]float64{{-10, 10}, {-20, 0}},
	}

	csv := RenderAggregateCSV(agg)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Year,Sim_1,Sim_2,Mean,P5,P95" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if lines[1] != "1,-10.000000,-20.000000,-15.000000,-19.500000,-10.500000" {
		t.Errorf("Unexpected row: %s", lines[1])
	}
}

func TestRenderScheduleCSV(t *testing.T) {
	s, err := schedule.Generate(domain.ScheduleModeLinear, domain.ScenarioBase, 10, 100, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	csv := RenderScheduleCSV([]domain.ScenarioSchedule{s})
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 11 {
		t.Fatalf("Expected 11 lines, got %d", len(lines))
	}
	if lines[0] != "Year,Scenario,Mode,Cash Flow,Cumulative Cash Flow" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if lines[1] != "1,base,linear,-50.000000,-50.000000" {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
	if lines[10] != "10,base,linear,70.000000,240.000000" {
		t.Errorf("Unexpected last row: %s", lines[10])
	}
}

func TestRenderTrialMetricsCSV(t *testing.T) {
	irr, dpi := 0.12, 1.5
	csv := RenderTrialMetricsCSV(performanceBatch(&irr, &dpi))

	want := "Trial,IRR,DPI\nSim_1,0.120000,1.500000\nSim_2,,\n"
	if csv != want {
		t.Errorf("Unexpected CSV:\n%s", csv)
	}
}
