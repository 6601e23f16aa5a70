package domain

import "fmt"

// Scenario identifies a deterministic distribution scenario.
type Scenario string

// Scenario constants
const (
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Distribution multipliers per scenario. Drawdowns are never scaled.
const (
	MultiplierBase        = 1.0
	MultiplierOptimistic  = 1.2
	MultiplierPessimistic = 0.8
)

// AllScenarios lists scenarios in report order.
var AllScenarios = []Scenario{ScenarioBase, ScenarioOptimistic, ScenarioPessimistic}

// String returns the string representation of Scenario.
func (s Scenario) String() string {
	return string(s)
}

// IsValid checks if the scenario is a known value.
func (s Scenario) IsValid() bool {
	return s == ScenarioBase || s == ScenarioOptimistic || s == ScenarioPessimistic
}

// Multiplier returns the distribution scaling factor for the scenario.
func (s Scenario) Multiplier() float64 {
	switch s {
	case ScenarioOptimistic:
		return MultiplierOptimistic
	case ScenarioPessimistic:
		return MultiplierPessimistic
	default:
		return MultiplierBase
	}
}

// ParseScenario converts a name into a Scenario.
func ParseScenario(name string) (Scenario, error) {
	s := Scenario(name)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown scenario %q", ErrValidation, name)
	}
	return s, nil
}

// ScheduleMode selects how capital calls are laid out in a deterministic schedule.
type ScheduleMode string

const (
	// ScheduleModeLinear calls a linearly decreasing share of commitments,
	// front-loaded over the drawdown window.
	ScheduleModeLinear ScheduleMode = "linear"

	// ScheduleModeAccumulating calls a flat quarter of commitments in each
	// drawdown period.
	ScheduleModeAccumulating ScheduleMode = "accumulating"
)

// String returns the string representation of ScheduleMode.
func (m ScheduleMode) String() string {
	return string(m)
}

// IsValid checks if the mode is a known value.
func (m ScheduleMode) IsValid() bool {
	return m == ScheduleModeLinear || m == ScheduleModeAccumulating
}

// ParseScheduleMode converts a name into a ScheduleMode. Empty selects linear.
func ParseScheduleMode(name string) (ScheduleMode, error) {
	if name == "" {
		return ScheduleModeLinear, nil
	}
	m := ScheduleMode(name)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown schedule mode %q", ErrValidation, name)
	}
	return m, nil
}

// ScenarioSchedule is one deterministic schedule for a scenario.
// All slices have length Years and are indexed by period-1.
type ScenarioSchedule struct {
	Scenario      Scenario         `json:"scenario"`
	Mode          ScheduleMode     `json:"mode"`
	Drawdowns     []float64        `json:"drawdowns"`     // negative amounts
	Distributions []float64        `json:"distributions"` // positive amounts, scaled by the scenario multiplier
	CashFlows     CashFlowSeries   `json:"cash_flows"`
	Cumulative    CumulativeSeries `json:"cumulative"`
}
