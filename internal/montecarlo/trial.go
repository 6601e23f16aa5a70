package montecarlo

import (
	"math/rand/v2"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/schedule"
)

// plan holds everything a trial needs that is fixed across the run.
type plan struct {
	years int
	peak  int
	noise domain.NoiseRange

	calls         []float64 // positive capital calls, zero after the drawdown window
	distributions []float64 // unscaled base distributions, zero inside the drawdown window
}

// newPlan precomputes the deterministic parts of a run.
// params must already be validated.
func newPlan(params domain.SimulationParameters) *plan {
	return &plan{
		years:         params.Years,
		peak:          params.PeakDrawdownYear,
		noise:         params.Noise(),
		calls:         schedule.CapitalCalls(params.CapitalCallPattern, params.Commitments, params.Years),
		distributions: schedule.Distributions(params.Years, params.Commitments, params.PeakDrawdownYear, domain.MultiplierBase),
	}
}

// trial generates one trial with its own private generator.
// Draws are taken in period order, one per distribution period.
func (p *plan) trial(index int, seed uint64) *domain.Trial {
	rng := rand.New(rand.NewPCG(seed, uint64(index)))
	width := p.noise.High - p.noise.Low

	amounts := make([]float64, p.years)
	for i := range amounts {
		amounts[i] = -p.calls[i]
	}
	for i := p.peak; i < p.years; i++ {
		factor := p.noise.Low + width*rng.Float64()
		amounts[i] += p.distributions[i] * factor
	}

	cashFlows := domain.NewCashFlowSeries(amounts)
	return &domain.Trial{
		Index:      index,
		Seed:       seed,
		CashFlows:  cashFlows,
		Cumulative: cashFlows.Cumulative(),
	}
}

// GenerateTrial replays a single trial from its index and seed.
func GenerateTrial(params domain.SimulationParameters, index int, seed uint64) (*domain.Trial, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return newPlan(params).trial(index, seed), nil
}
