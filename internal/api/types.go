package api

import (
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/orchestrator"
	"jcurve-lab/internal/performance"
)

// ScheduleRequest asks for the deterministic scenario schedules.
type ScheduleRequest struct {
	Years            int     `json:"years"`
	Commitments      float64 `json:"commitments"`
	PeakDrawdownYear int     `json:"peak_drawdown_year"`
	Mode             string  `json:"mode,omitempty"` // linear (default) or accumulating
}

// ScheduleResponse holds one entry per scenario.
type ScheduleResponse struct {
	Mode      domain.ScheduleMode `json:"mode"`
	Scenarios []ScenarioResponse  `json:"scenarios"`
}

// ScenarioResponse is one scenario schedule with its metrics.
type ScenarioResponse struct {
	Scenario      domain.Scenario           `json:"scenario"`
	Drawdowns     []float64                 `json:"drawdowns"`
	Distributions []float64                 `json:"distributions"`
	CashFlows     []float64                 `json:"cash_flows"`
	Cumulative    []float64                 `json:"cumulative"`
	Metrics       domain.PerformanceMetrics `json:"metrics"`
}

// SimulateRequest carries simulation parameters.
type SimulateRequest struct {
	domain.SimulationParameters
	IncludeTrials bool `json:"include_trials,omitempty"`
}

// SimulateResponse summarizes a full run.
type SimulateResponse struct {
	RunID       string               `json:"run_id"`
	Percentiles [2]float64           `json:"percentiles"`
	Rows        []domain.PeriodStats `json:"rows"`
	Scenarios   []ScenarioResponse   `json:"scenarios"`
	Metrics     MetricsSummary       `json:"metrics"`
	Trials      [][]float64          `json:"trials,omitempty"` // cumulative per trial
	DurationMs  int64                `json:"duration_ms"`
}

// MetricsSummary is the distribution of trial-level IRR and DPI.
type MetricsSummary struct {
	IRR          performance.Summary `json:"irr"`
	DPI          performance.Summary `json:"dpi"`
	UndefinedIRR int                 `json:"undefined_irr"`
	UndefinedDPI int                 `json:"undefined_dpi"`
}

// MetricsRequest asks for IRR and DPI of a signed cash-flow series.
type MetricsRequest struct {
	CashFlows []float64 `json:"cash_flows"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stream message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

// StreamMessage is one websocket frame sent by the stream endpoint.
type StreamMessage struct {
	Type   string            `json:"type"`
	Done   int               `json:"done,omitempty"`
	Total  int               `json:"total,omitempty"`
	Result *SimulateResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func scenarioResponses(schedules []domain.ScenarioSchedule, metrics []domain.PerformanceMetrics) []ScenarioResponse {
	out := make([]ScenarioResponse, len(schedules))
	for i, s := range schedules {
		out[i] = ScenarioResponse{
			Scenario:      s.Scenario,
			Drawdowns:     s.Drawdowns,
			Distributions: s.Distributions,
			CashFlows:     s.CashFlows.Amounts(),
			Cumulative:    s.Cumulative,
		}
		if i < len(metrics) {
			out[i].Metrics = metrics[i]
		}
	}
	return out
}

func simulateResponse(res *orchestrator.Result, includeTrials bool) *SimulateResponse {
	resp := &SimulateResponse{
		RunID:       res.RunID,
		Percentiles: res.Aggregate.Percentiles,
		Rows:        res.Aggregate.Periods,
		Scenarios:   scenarioResponses(res.Scenarios, res.ScenarioMetrics),
		Metrics: MetricsSummary{
			IRR:          res.TrialMetrics.IRR,
			DPI:          res.TrialMetrics.DPI,
			UndefinedIRR: res.TrialMetrics.UndefinedIRR,
			UndefinedDPI: res.TrialMetrics.UndefinedDPI,
		},
		DurationMs: res.Duration.Milliseconds(),
	}
	if includeTrials {
		resp.Trials = res.Aggregate.TrialCumulative
	}
	return resp
}
