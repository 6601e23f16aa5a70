package reporting

import (
	"fmt"
	"strings"
	"time"

	"jcurve-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# J-Curve Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s | Duration: %s\n\n", r.RunID, r.Duration.Round(time.Millisecond)))
	}

	// Parameters
	p := r.Parameters
	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Years | %d |\n", p.Years))
	sb.WriteString(fmt.Sprintf("| Commitments | %.2f |\n", p.Commitments))
	sb.WriteString(fmt.Sprintf("| Peak Drawdown Year | %d |\n", p.PeakDrawdownYear))
	sb.WriteString(fmt.Sprintf("| Capital Call Pattern | %s |\n", formatPattern(p.CapitalCallPattern)))
	sb.WriteString(fmt.Sprintf("| Noise Range | [%.2f, %.2f] |\n", p.NoiseLow, p.NoiseHigh))
	sb.WriteString(fmt.Sprintf("| Simulations | %d |\n", p.NSimulations))
	sb.WriteString(fmt.Sprintf("| Seed | %s |\n", p.Seed))
	sb.WriteString(fmt.Sprintf("| Schedule Mode | %s |\n", p.Mode))
	sb.WriteString("\n")

	// Scenarios
	sb.WriteString("## Scenario Schedules\n\n")
	if len(r.Scenarios) > 0 {
		sb.WriteString("| Scenario | Mode | Trough | Trough Year | Break-even Year | Final | IRR | DPI |\n")
		sb.WriteString("|----------|------|--------|-------------|-----------------|-------|-----|-----|\n")
		for _, s := range r.Scenarios {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %d | %s | %.2f | %s | %s |\n",
				s.Scenario, s.Mode, s.Curve.TroughValue, s.Curve.TroughPeriod,
				formatBreakEven(s.Curve.BreakEvenPeriod), s.Curve.Final,
				formatPct(s.IRR), formatRatio(s.DPI)))
		}
	} else {
		sb.WriteString("No scenario schedules available.\n")
	}
	sb.WriteString("\n")

	// Monte Carlo bands
	low, high := domain.PercentileLabel(r.Percentiles[0]), domain.PercentileLabel(r.Percentiles[1])
	sb.WriteString("## Monte Carlo Bands\n\n")
	if len(r.Bands) > 0 {
		sb.WriteString(fmt.Sprintf("| Year | Mean | %s | %s |\n", low, high))
		sb.WriteString("|------|------|-----|-----|\n")
		for _, b := range r.Bands {
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f |\n", b.Period, b.Mean, b.Low, b.High))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Mean curve trough: %.2f in year %d. Break-even: %s. Final: %.2f.\n",
			r.MeanCurve.TroughValue, r.MeanCurve.TroughPeriod,
			formatBreakEven(r.MeanCurve.BreakEvenPeriod), r.MeanCurve.Final))
	} else {
		sb.WriteString("No Monte Carlo bands available.\n")
	}
	sb.WriteString("\n")

	// Trial performance
	tp := r.TrialPerformance
	sb.WriteString("## Trial Performance\n\n")
	sb.WriteString("| Metric | Count | Mean | P5 | P50 | P95 | Undefined |\n")
	sb.WriteString("|--------|-------|------|----|-----|-----|-----------|\n")
	sb.WriteString(fmt.Sprintf("| IRR (%%) | %d | %.2f | %.2f | %.2f | %.2f | %d |\n",
		tp.IRR.Count, tp.IRR.Mean*100, tp.IRR.P5*100, tp.IRR.P50*100, tp.IRR.P95*100, tp.UndefinedIRR))
	sb.WriteString(fmt.Sprintf("| DPI | %d | %.4f | %.4f | %.4f | %.4f | %d |\n",
		tp.DPI.Count, tp.DPI.Mean, tp.DPI.P5, tp.DPI.P50, tp.DPI.P95, tp.UndefinedDPI))
	sb.WriteString("\n")

	return sb.String()
}

func formatPattern(pattern []float64) string {
	parts := make([]string, len(pattern))
	for i, v := range pattern {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatBreakEven(period int) string {
	if period == 0 {
		return "never"
	}
	return fmt.Sprintf("%d", period)
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}
