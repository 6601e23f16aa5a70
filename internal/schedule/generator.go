// Package schedule builds deterministic capital-call and distribution
// schedules for a fund.
package schedule

import (
	"fmt"

	"jcurve-lab/internal/domain"
)

// Schedule constants.
const (
	// DrawdownFraction scales the linear drawdown of each call period.
	DrawdownFraction = 0.5

	// AccumulatingCallFraction is the flat share of commitments called in
	// each drawdown period in accumulating mode.
	AccumulatingCallFraction = 0.25

	// PayoutRate caps distributions to a partial return of capital.
	PayoutRate = 0.7
)

// GenerateBase returns the base-scenario cash flows in linear mode.
func GenerateBase(years int, commitments float64, peakDrawdownYear int) (domain.CashFlowSeries, error) {
	s, err := Generate(domain.ScheduleModeLinear, domain.ScenarioBase, years, commitments, peakDrawdownYear)
	if err != nil {
		return nil, err
	}
	return s.CashFlows, nil
}

// Generate builds the schedule of one scenario.
// Output cash flows are the elementwise sum of the (unscaled) drawdowns and
// the scenario-scaled distributions.
func Generate(mode domain.ScheduleMode, scenario domain.Scenario, years int, commitments float64, peakDrawdownYear int) (domain.ScenarioSchedule, error) {
	if err := domain.ValidateHorizon(years, commitments, peakDrawdownYear); err != nil {
		return domain.ScenarioSchedule{}, err
	}
	if !mode.IsValid() {
		return domain.ScenarioSchedule{}, fmt.Errorf("%w: unknown schedule mode %q", domain.ErrValidation, mode)
	}
	if !scenario.IsValid() {
		return domain.ScenarioSchedule{}, fmt.Errorf("%w: unknown scenario %q", domain.ErrValidation, scenario)
	}

	drawdowns := Drawdowns(mode, years, commitments, peakDrawdownYear)
	distributions := Distributions(years, commitments, peakDrawdownYear, scenario.Multiplier())

	amounts := make([]float64, years)
	for i := range amounts {
		amounts[i] = drawdowns[i] + distributions[i]
	}
	cashFlows := domain.NewCashFlowSeries(amounts)

	return domain.ScenarioSchedule{
		Scenario:      scenario,
		Mode:          mode,
		Drawdowns:     drawdowns,
		Distributions: distributions,
		CashFlows:     cashFlows,
		Cumulative:    cashFlows.Cumulative(),
	}, nil
}

// GenerateScenarios builds base, optimistic and pessimistic schedules.
func GenerateScenarios(mode domain.ScheduleMode, years int, commitments float64, peakDrawdownYear int) ([]domain.ScenarioSchedule, error) {
	out := make([]domain.ScenarioSchedule, 0, len(domain.AllScenarios))
	for _, sc := range domain.AllScenarios {
		s, err := Generate(mode, sc, years, commitments, peakDrawdownYear)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Drawdowns returns the negative capital-call vector of length years.
// Callers must validate the horizon first.
func Drawdowns(mode domain.ScheduleMode, years int, commitments float64, peakDrawdownYear int) []float64 {
	out := make([]float64, years)
	for t := 0; t < peakDrawdownYear && t < years; t++ {
		switch mode {
		case domain.ScheduleModeAccumulating:
			out[t] = -(commitments * AccumulatingCallFraction)
		default:
			out[t] = -(commitments * float64(peakDrawdownYear-t) / float64(peakDrawdownYear) * DrawdownFraction)
		}
	}
	return out
}

// Distributions returns the positive distribution vector of length years.
// The t-th distribution period (0-based) sits at index peakDrawdownYear+t.
// Callers must ensure peakDrawdownYear < years.
func Distributions(years int, commitments float64, peakDrawdownYear int, multiplier float64) []float64 {
	out := make([]float64, years)
	remaining := years - peakDrawdownYear
	for t := 0; t < remaining; t++ {
		out[peakDrawdownYear+t] = BaseDistribution(commitments, t, remaining) * multiplier
	}
	return out
}

// BaseDistribution is the unscaled distribution of the t-th (0-based)
// distribution period out of remaining.
func BaseDistribution(commitments float64, t, remaining int) float64 {
	return commitments * float64(t+1) / float64(remaining) * PayoutRate
}

// CapitalCalls returns the positive pattern-driven call vector of length
// years: pattern[i] * commitments for i < len(pattern), zero after.
func CapitalCalls(pattern []float64, commitments float64, years int) []float64 {
	out := make([]float64, years)
	for i, pct := range pattern {
		if i >= years {
			break
		}
		out[i] = commitments * pct
	}
	return out
}
