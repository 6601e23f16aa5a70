package reporting

import "time"

// Report represents a J-curve run report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Duration    time.Duration

	Parameters ParameterSummary

	// Deterministic scenarios, one row per scenario
	Scenarios []ScenarioRow

	// Monte Carlo bands of cumulative cash flow
	Percentiles [2]float64
	Bands       []BandRow
	MeanCurve   CurveSummary

	// Trial-level performance
	TrialPerformance TrialPerformanceSection
}

// ParameterSummary echoes the run inputs.
type ParameterSummary struct {
	Years              int
	Commitments        float64
	PeakDrawdownYear   int
	CapitalCallPattern []float64
	NoiseLow           float64
	NoiseHigh          float64
	NSimulations       int
	Seed               string // "unseeded" when no seed was supplied
	Mode               string
}

// ScenarioRow summarizes one deterministic scenario schedule.
type ScenarioRow struct {
	Scenario string
	Mode     string
	Curve    CurveSummary

	IRR      *float64 // nil = undefined
	DPI      *float64 // nil = undefined
	IRRError string
	DPIError string
}

// CurveSummary describes the shape of a cumulative curve.
type CurveSummary struct {
	TroughValue     float64
	TroughPeriod    int
	BreakEvenPeriod int // 0 = never
	Final           float64
}

// BandRow is one period of the Monte Carlo band.
type BandRow struct {
	Period int
	Mean   float64
	Low    float64
	High   float64
}

// TrialPerformanceSection summarizes IRR/DPI across trials.
type TrialPerformanceSection struct {
	Trials       int
	UndefinedIRR int
	UndefinedDPI int
	IRR          DistributionRow
	DPI          DistributionRow
}

// DistributionRow is the spread of a metric across trials.
type DistributionRow struct {
	Count int
	Mean  float64
	P5    float64
	P50   float64
	P95   float64
}
