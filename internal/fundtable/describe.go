package fundtable

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"jcurve-lab/internal/aggregate"
	"jcurve-lab/internal/domain"
)

// ColumnSummary holds descriptive statistics of one numeric column.
// Std is the sample standard deviation (NaN for a single row).
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

// NumericColumns lists the columns Describe knows about.
var NumericColumns = []string{ColVintageYear, ColCommittedCapital, ColIRR, ColMOIC}

// KeyMetrics are the columns summarized by default.
var KeyMetrics = []string{ColIRR, ColMOIC}

// Describe summarizes the named columns. No columns means NumericColumns.
func Describe(records []domain.FundRecord, columns ...string) ([]ColumnSummary, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	if len(columns) == 0 {
		columns = NumericColumns
	}

	out := make([]ColumnSummary, 0, len(columns))
	for _, col := range columns {
		values, err := columnValues(records, col)
		if err != nil {
			return nil, err
		}
		out = append(out, describe(col, values))
	}
	return out, nil
}

func columnValues(records []domain.FundRecord, col string) ([]float64, error) {
	values := make([]float64, len(records))
	for i, r := range records {
		switch col {
		case ColVintageYear:
			values[i] = float64(r.VintageYear)
		case ColCommittedCapital:
			values[i] = r.CommittedCapitalMM
		case ColIRR:
			values[i] = r.IRRPct
		case ColMOIC:
			values[i] = r.MOIC
		default:
			return nil, fmt.Errorf("%w: unknown numeric column %q", domain.ErrValidation, col)
		}
	}
	return values, nil
}

func describe(col string, values []float64) ColumnSummary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	std := math.NaN()
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return ColumnSummary{
		Column: col,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    std,
		Min:    sorted[0],
		P25:    aggregate.Percentile(sorted, 0.25),
		P50:    aggregate.Percentile(sorted, 0.50),
		P75:    aggregate.Percentile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// RenderDescribe renders summaries with statistics as rows and columns
// side by side.
func RenderDescribe(summaries []ColumnSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s", ""))
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf(" %22s", s.Column))
	}
	sb.WriteString("\n")

	rows := []struct {
		name string
		get  func(ColumnSummary) float64
	}{
		{"count", func(s ColumnSummary) float64 { return float64(s.Count) }},
		{"mean", func(s ColumnSummary) float64 { return s.Mean }},
		{"std", func(s ColumnSummary) float64 { return s.Std }},
		{"min", func(s ColumnSummary) float64 { return s.Min }},
		{"25%", func(s ColumnSummary) float64 { return s.P25 }},
		{"50%", func(s ColumnSummary) float64 { return s.P50 }},
		{"75%", func(s ColumnSummary) float64 { return s.P75 }},
		{"max", func(s ColumnSummary) float64 { return s.Max }},
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-6s", row.name))
		for _, s := range summaries {
			sb.WriteString(fmt.Sprintf(" %22.6f", row.get(s)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
