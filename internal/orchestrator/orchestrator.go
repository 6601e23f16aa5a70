// Package orchestrator coordinates a full J-curve run:
// schedules → Monte Carlo → aggregation → performance metrics.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jcurve-lab/internal/aggregate"
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/montecarlo"
	"jcurve-lab/internal/observability"
	"jcurve-lab/internal/performance"
	"jcurve-lab/internal/schedule"
)

// Orchestrator coordinates run execution.
// Safe for concurrent use; every Run works on fresh state.
type Orchestrator struct {
	engine      *montecarlo.Engine
	calc        *performance.Calculator
	logger      *zap.Logger
	metrics     *observability.Metrics
	mode        domain.ScheduleMode
	percentiles []float64
}

// Options for creating Orchestrator.
type Options struct {
	Engine  *montecarlo.Engine // nil builds one with default workers
	Solver  performance.Solver // zero value uses performance.DefaultSolver
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Mode        domain.ScheduleMode // empty = linear
	Percentiles []float64           // nil = 5th/95th
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	log := logger.OrNop(opts.Logger)
	engine := opts.Engine
	if engine == nil {
		engine = montecarlo.NewEngine(montecarlo.Options{Logger: log, Metrics: opts.Metrics})
	}
	mode := opts.Mode
	if mode == "" {
		mode = domain.ScheduleModeLinear
	}
	return &Orchestrator{
		engine:      engine,
		calc:        performance.NewCalculator(opts.Solver, opts.Metrics),
		logger:      logger.WithComponent(log, "orchestrator"),
		metrics:     opts.Metrics,
		mode:        mode,
		percentiles: opts.Percentiles,
	}
}

// WithProgress returns a copy whose engine reports trial progress to fn.
func (o *Orchestrator) WithProgress(fn montecarlo.ProgressFunc) *Orchestrator {
	cp := *o
	cp.engine = o.engine.WithProgress(fn)
	return &cp
}

// Mode returns the default schedule mode.
func (o *Orchestrator) Mode() domain.ScheduleMode {
	return o.mode
}

// Calculator returns the performance calculator used for metrics.
func (o *Orchestrator) Calculator() *performance.Calculator {
	return o.calc
}

// Result contains everything produced by one run.
type Result struct {
	RunID  string                      `json:"run_id"`
	Params domain.SimulationParameters `json:"params"`
	Mode   domain.ScheduleMode         `json:"mode"`

	Scenarios       []domain.ScenarioSchedule   `json:"scenarios"`
	ScenarioMetrics []domain.PerformanceMetrics `json:"scenario_metrics"` // parallel to Scenarios

	Trials       []*domain.Trial         `json:"-"`
	Aggregate    *domain.AggregateResult `json:"aggregate"`
	TrialMetrics performance.BatchResult `json:"trial_metrics"`

	Duration time.Duration `json:"duration"`
}

// ScenarioSet holds deterministic schedules with their metrics.
type ScenarioSet struct {
	Mode      domain.ScheduleMode         `json:"mode"`
	Schedules []domain.ScenarioSchedule   `json:"schedules"`
	Metrics   []domain.PerformanceMetrics `json:"metrics"`
}

// Scenarios generates the base/optimistic/pessimistic schedules and
// evaluates each. An empty mode uses the orchestrator's default.
func (o *Orchestrator) Scenarios(mode domain.ScheduleMode, years int, commitments float64, peakDrawdownYear int) (*ScenarioSet, error) {
	if mode == "" {
		mode = o.mode
	}
	schedules, err := schedule.GenerateScenarios(mode, years, commitments, peakDrawdownYear)
	if err != nil {
		return nil, err
	}
	o.metrics.RecordSchedule(string(mode))

	set := &ScenarioSet{
		Mode:      mode,
		Schedules: schedules,
		Metrics:   make([]domain.PerformanceMetrics, len(schedules)),
	}
	for i, s := range schedules {
		set.Metrics[i] = o.calc.Evaluate(s.CashFlows.Amounts())
	}
	return set, nil
}

// Run executes the full pipeline.
// Phases:
//  1. Validate parameters
//  2. Deterministic scenario schedules
//  3. Monte Carlo trials
//  4. Percentile aggregation
//  5. Per-trial performance metrics
func (o *Orchestrator) Run(ctx context.Context, params domain.SimulationParameters) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.WithRun(o.logger, runID)

	// Phase 1: Validate
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, Params: params, Mode: o.mode}
	log.Info("run started",
		zap.Int("years", params.Years),
		zap.Int("trials", params.NSimulations),
		zap.String("mode", string(o.mode)),
	)

	// Phase 2: Scenarios
	set, err := o.Scenarios(o.mode, params.Years, params.Commitments, params.PeakDrawdownYear)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (scenarios) failed: %w", err)
	}
	result.Scenarios = set.Schedules
	result.ScenarioMetrics = set.Metrics

	// Phase 3: Monte Carlo
	trials, err := o.engine.Run(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (monte carlo) failed: %w", err)
	}
	result.Trials = trials

	// Phase 4: Aggregate
	agg, err := aggregate.Aggregate(trials, o.percentiles...)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (aggregate) failed: %w", err)
	}
	o.metrics.RecordAggregate()
	result.Aggregate = agg

	// Phase 5: Trial metrics, never aborted by a single trial
	result.TrialMetrics = o.calc.EvaluateTrials(trials)

	result.Duration = time.Since(start)
	log.Info("run finished",
		zap.Duration("elapsed", result.Duration),
		zap.Int("undefined_irr", result.TrialMetrics.UndefinedIRR),
		zap.Int("undefined_dpi", result.TrialMetrics.UndefinedDPI),
	)
	if n := result.TrialMetrics.UndefinedIRR; n > 0 {
		log.Warn("some trials have no IRR", zap.Int("count", n))
	}

	return result, nil
}
