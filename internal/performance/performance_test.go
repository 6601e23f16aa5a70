package performance

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/observability"
)

var sampleFlows = []float64{-100, 30, 40, 50, 60}

func TestIRR_Sample(t *testing.T) {
	irr, err := IRR(sampleFlows)
	require.NoError(t, err)

	assert.InDelta(t, 0.248883, irr, 1e-5)
	assert.Less(t, math.Abs(NPV(irr, sampleFlows)), 1e-6)

	again, err := IRR(sampleFlows)
	require.NoError(t, err)
	assert.Equal(t, irr, again, "IRR must be deterministic")
}

func TestIRR_NewtonAgreesWithBisection(t *testing.T) {
	newton := DefaultSolver
	newton.Method = MethodNewton

	series := [][]float64{
		sampleFlows,
		{-50, -25, 8.75, 17.5, 26.25, 35, 43.75, 52.5, 61.25, 70},
		{-1000, 100, 100, 100, 1100},
	}
	for _, cfs := range series {
		b, err := DefaultSolver.IRR(cfs)
		require.NoError(t, err)
		n, err := newton.IRR(cfs)
		require.NoError(t, err)
		assert.InDelta(t, b, n, 1e-6, "cash flows %v", cfs)
	}

	par, err := newton.IRR([]float64{-1000, 100, 100, 100, 1100})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, par, 1e-8)
}

func TestIRR_NoSignChange(t *testing.T) {
	tests := [][]float64{
		{10, 20, 30},
		{-10, -20, -30},
		{0, 0, 0},
		nil,
	}
	for _, cfs := range tests {
		_, err := IRR(cfs)
		if !errors.Is(err, domain.ErrNoSolution) {
			t.Fatalf("IRR(%v): expected ErrNoSolution, got %v", cfs, err)
		}
		if !strings.Contains(err.Error(), "no sign change") {
			t.Errorf("IRR(%v): unexpected message %q", cfs, err)
		}
	}
}

func TestIRR_DidNotConverge(t *testing.T) {
	// NPV is negative at every rate.
	_, err := IRR([]float64{-100, 250, -160})
	require.ErrorIs(t, err, domain.ErrNoSolution)
	assert.Contains(t, err.Error(), "did not converge")

	for _, m := range []Method{MethodBisection, MethodNewton} {
		s := Solver{Method: m, Guess: 0.1, Tolerance: 1e-7, MaxIterations: 1}
		_, err := s.IRR(sampleFlows)
		require.ErrorIs(t, err, domain.ErrNoSolution, "method %s", m)
		assert.Contains(t, err.Error(), "did not converge")
	}
}

func TestIRR_RootOutsideGrid(t *testing.T) {
	tests := []struct {
		name  string
		flows []float64
		want  float64
		delta float64
	}{
		{"deep loss near -1", []float64{-100, 0.5}, -0.995, 1e-9},
		{"multi-period deep loss", []float64{-100, 0, 0.0001}, -0.999, 1e-6},
		{"return above 1000", []float64{-100, 1e7}, 99999, 1e-3},
	}
	newton := DefaultSolver
	newton.Method = MethodNewton

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			irr, err := IRR(tt.flows)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, irr, tt.delta)
			assert.LessOrEqual(t, math.Abs(NPV(irr, tt.flows)), DefaultTolerance)

			n, err := newton.IRR(tt.flows)
			require.NoError(t, err)
			assert.InDelta(t, n, irr, tt.delta)
		})
	}
}

func TestIRR_ExactRootOnGrid(t *testing.T) {
	irr, err := IRR([]float64{-100, 110})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, irr, 1e-8)
}

func TestSolver_Validate(t *testing.T) {
	tests := []struct {
		name   string
		solver Solver
	}{
		{"unknown method", Solver{Method: "secant", Guess: 0.1, Tolerance: 1e-7, MaxIterations: 10}},
		{"guess at -1", Solver{Method: MethodNewton, Guess: -1, Tolerance: 1e-7, MaxIterations: 10}},
		{"zero tolerance", Solver{Method: MethodBisection, Guess: 0.1, MaxIterations: 10}},
		{"zero iterations", Solver{Method: MethodBisection, Guess: 0.1, Tolerance: 1e-7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.solver.IRR(sampleFlows)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := IRR([]float64{-100, math.NaN()})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodBisection, m)

	m, err = ParseMethod(" Newton ")
	require.NoError(t, err)
	assert.Equal(t, MethodNewton, m)

	_, err = ParseMethod("brent")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNPV(t *testing.T) {
	assert.InDelta(t, 80, NPV(0, sampleFlows), 1e-12)
	assert.InDelta(t, 0, NPV(0.1, []float64{-100, 110}), 1e-12)
	assert.Zero(t, NPV(0.1, nil))
}

func TestDPI(t *testing.T) {
	dpi, err := DPI([]float64{10, 20, 30, 40, 50, 60}, []float64{40, 30, 20, 10})
	require.NoError(t, err)
	assert.InDelta(t, 2.1, dpi, 1e-12)

	_, err = DPI([]float64{10}, []float64{0, 0})
	assert.ErrorIs(t, err, domain.ErrDivision)

	_, err = DPI([]float64{10}, nil)
	assert.ErrorIs(t, err, domain.ErrDivision)
}

func TestSplitCashFlows(t *testing.T) {
	dist, calls := SplitCashFlows([]float64{-50, -25, 0, 10, 20})
	assert.Equal(t, []float64{0, 0, 0, 10, 20}, dist)
	assert.Equal(t, []float64{50, 25, 0, 0, 0}, calls)
}

func TestEvaluate(t *testing.T) {
	m := Evaluate(sampleFlows)
	require.True(t, m.IRRDefined())
	require.True(t, m.DPIDefined())
	assert.InDelta(t, 1.8, *m.DPI, 1e-12)
	pct, ok := m.IRRPct()
	assert.True(t, ok)
	assert.InDelta(t, 24.888, pct, 1e-3)

	undefined := Evaluate([]float64{10, 20})
	assert.False(t, undefined.IRRDefined())
	assert.False(t, undefined.DPIDefined())
	assert.Contains(t, undefined.IRRError, "no sign change")
	assert.Contains(t, undefined.DPIError, "division by zero")
}

func TestEvaluateTrials_ContinuesPastFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	calc := NewCalculator(Solver{}, metrics)
	assert.Equal(t, DefaultSolver, calc.Solver())

	trials := []*domain.Trial{
		{Index: 0, CashFlows: domain.NewCashFlowSeries(sampleFlows)},
		{Index: 1, CashFlows: domain.NewCashFlowSeries([]float64{5, 5, 5})},
		{Index: 2, CashFlows: domain.NewCashFlowSeries([]float64{-100, 110})},
	}

	res := calc.EvaluateTrials(trials)
	require.Len(t, res.Metrics, 3)
	assert.Equal(t, 1, res.UndefinedIRR)
	assert.Equal(t, 1, res.UndefinedDPI)
	assert.True(t, res.Metrics[2].IRRDefined())
	assert.Equal(t, 2, res.IRR.Count)
	assert.Equal(t, 2, res.DPI.Count)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MetricFailures.WithLabelValues(observability.MetricIRR)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MetricFailures.WithLabelValues(observability.MetricDPI)))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{5, 1, 3, 2, 4, math.NaN()})
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3, s.Mean, 1e-12)
	assert.InDelta(t, 1.2, s.P5, 1e-12)
	assert.InDelta(t, 3, s.P50, 1e-12)
	assert.InDelta(t, 4.8, s.P95, 1e-12)

	assert.Equal(t, Summary{}, Summarize(nil))
}
