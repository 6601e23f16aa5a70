package domain

import (
	"fmt"
	"math"
)

// Default noise bounds for the multiplicative distribution factor.
const (
	DefaultNoiseLow  = 0.8
	DefaultNoiseHigh = 1.2
)

// NoiseRange brackets the uniform multiplicative factor applied to each
// simulated distribution.
type NoiseRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultNoiseRange returns [0.8, 1.2].
func DefaultNoiseRange() NoiseRange {
	return NoiseRange{Low: DefaultNoiseLow, High: DefaultNoiseHigh}
}

// SimulationParameters holds the inputs of one simulation run.
// Treated as immutable for the duration of the run.
type SimulationParameters struct {
	Years              int         `json:"years"`
	Commitments        float64     `json:"commitments"`
	PeakDrawdownYear   int         `json:"peak_drawdown_year"` // number of capital-call periods
	CapitalCallPattern []float64   `json:"capital_call_pattern"`
	NoiseRange         *NoiseRange `json:"noise_range,omitempty"` // nil = DefaultNoiseRange
	NSimulations       int         `json:"n_simulations"`
	RandomSeed         *int64      `json:"random_seed,omitempty"` // nil = unseeded
}

// WithDefaults returns a copy with unset optional fields filled in.
// An explicit range, including [0, 0], is kept.
func (p SimulationParameters) WithDefaults() SimulationParameters {
	if p.NoiseRange == nil {
		r := DefaultNoiseRange()
		p.NoiseRange = &r
	}
	return p
}

// Noise returns the noise range, or DefaultNoiseRange when unset.
func (p SimulationParameters) Noise() NoiseRange {
	if p.NoiseRange == nil {
		return DefaultNoiseRange()
	}
	return *p.NoiseRange
}

// DistributionYears returns the length of the distribution window.
func (p SimulationParameters) DistributionYears() int {
	return p.Years - p.PeakDrawdownYear
}

// Seeded reports whether a random seed was supplied.
func (p SimulationParameters) Seeded() bool {
	return p.RandomSeed != nil
}

// Validate checks parameter shape and consistency.
// Returns an error wrapping ErrValidation on the first violation.
func (p SimulationParameters) Validate() error {
	if err := ValidateHorizon(p.Years, p.Commitments, p.PeakDrawdownYear); err != nil {
		return err
	}
	if len(p.CapitalCallPattern) != p.PeakDrawdownYear {
		return fmt.Errorf("%w: capital call pattern has %d entries, peak drawdown year is %d",
			ErrValidation, len(p.CapitalCallPattern), p.PeakDrawdownYear)
	}
	for i, v := range p.CapitalCallPattern {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: capital call pattern[%d] is not finite", ErrValidation, i)
		}
	}
	if p.NSimulations <= 0 {
		return fmt.Errorf("%w: n_simulations must be positive, got %d", ErrValidation, p.NSimulations)
	}
	return p.Noise().validate()
}

func (r NoiseRange) validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
		return fmt.Errorf("%w: noise range must be finite", ErrValidation)
	}
	if r.Low < 0 {
		return fmt.Errorf("%w: noise range low bound %g is negative", ErrValidation, r.Low)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: noise range [%g, %g] is inverted", ErrValidation, r.Low, r.High)
	}
	return nil
}

// ValidateHorizon checks the scalar inputs shared by every schedule:
// positive years and commitments, and a drawdown window that leaves at
// least one distribution period.
func ValidateHorizon(years int, commitments float64, peakDrawdownYear int) error {
	if years <= 0 {
		return fmt.Errorf("%w: years must be positive, got %d", ErrValidation, years)
	}
	if math.IsNaN(commitments) || math.IsInf(commitments, 0) || commitments <= 0 {
		return fmt.Errorf("%w: commitments must be positive, got %g", ErrValidation, commitments)
	}
	if peakDrawdownYear <= 0 || peakDrawdownYear > years {
		return fmt.Errorf("%w: peak drawdown year must be in [1, %d], got %d",
			ErrValidation, years, peakDrawdownYear)
	}
	if peakDrawdownYear == years {
		return fmt.Errorf("%w: peak drawdown year equals years, no distribution periods remain", ErrValidation)
	}
	return nil
}
