package reporting

import (
	"fmt"
	"strings"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/performance"
)

// RenderAggregateCSV renders the Monte Carlo table as CSV:
// Year, one column per trial, then Mean and the two percentile columns.
func RenderAggregateCSV(agg *domain.AggregateResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString("Year")
	for i := 0; i < agg.NumTrials(); i++ {
		sb.WriteString(",")
		sb.WriteString(domain.SimulationLabel(i))
	}
	sb.WriteString(fmt.Sprintf(",Mean,%s,%s\n",
		domain.PercentileLabel(agg.Percentiles[0]),
		domain.PercentileLabel(agg.Percentiles[1]),
	))

	// Rows
	for _, row := range agg.Rows() {
		sb.WriteString(fmt.Sprintf("%d", row.Period))
		for _, v := range row.Trials {
			sb.WriteString(fmt.Sprintf(",%.6f", v))
		}
		sb.WriteString(fmt.Sprintf(",%.6f,%.6f,%.6f\n", row.Mean, row.Low, row.High))
	}

	return sb.String()
}

// RenderScheduleCSV renders deterministic schedules in long format.
func RenderScheduleCSV(schedules []domain.ScenarioSchedule) string {
	var sb strings.Builder

	sb.WriteString("Year,Scenario,Mode,Cash Flow,Cumulative Cash Flow\n")
	for _, s := range schedules {
		for i, cf := range s.CashFlows {
			sb.WriteString(fmt.Sprintf("%d,%s,%s,%.6f,%.6f\n",
				cf.Period, s.Scenario, s.Mode, cf.Amount, s.Cumulative[i]))
		}
	}

	return sb.String()
}

// RenderTrialMetricsCSV renders per-trial IRR and DPI. Undefined metrics
// are left empty.
func RenderTrialMetricsCSV(batch performance.BatchResult) string {
	var sb strings.Builder

	sb.WriteString("Trial,IRR,DPI\n")
	for i, m := range batch.Metrics {
		sb.WriteString(domain.SimulationLabel(i))
		sb.WriteString(",")
		sb.WriteString(optFloat(m.IRR))
		sb.WriteString(",")
		sb.WriteString(optFloat(m.DPI))
		sb.WriteString("\n")
	}

	return sb.String()
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
