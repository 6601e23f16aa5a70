package verification

import (
	"context"
	"errors"
	"fmt"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/montecarlo"
)

var (
	// ErrUnseeded is returned when reproducibility is checked without a seed.
	ErrUnseeded = errors.New("parameters are unseeded")

	// ErrNilTrial is returned when a stored trial is nil.
	ErrNilTrial = errors.New("nil trial")
)

// ReplayVerifier re-generates stored trials from their index and seed.
type ReplayVerifier struct {
	params domain.SimulationParameters
}

// NewReplayVerifier creates a verifier for trials produced with params.
func NewReplayVerifier(params domain.SimulationParameters) *ReplayVerifier {
	return &ReplayVerifier{params: params}
}

// VerifyTrial replays a single stored trial and compares all fields.
func (v *ReplayVerifier) VerifyTrial(ctx context.Context, stored *domain.Trial) (*TrialResult, error) {
	if stored == nil {
		return nil, ErrNilTrial
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	replayed, err := montecarlo.GenerateTrial(v.params, stored.Index, stored.Seed)
	if err != nil {
		return nil, fmt.Errorf("replay trial %d: %w", stored.Index, err)
	}

	res := verifyPair(stored, replayed)
	return &res, nil
}

// VerifyAll replays every stored trial.
func (v *ReplayVerifier) VerifyAll(ctx context.Context, stored []*domain.Trial) (*Report, error) {
	report := &Report{Results: make([]TrialResult, 0, len(stored))}
	for _, t := range stored {
		res, err := v.VerifyTrial(ctx, t)
		if err != nil {
			return nil, err
		}
		report.add(*res)
	}
	return report, nil
}

// VerifyReproducible runs engine twice with the same seeded parameters and
// compares the runs trial by trial.
func VerifyReproducible(ctx context.Context, engine *montecarlo.Engine, params domain.SimulationParameters) (*Report, error) {
	if !params.Seeded() {
		return nil, ErrUnseeded
	}

	first, err := engine.Run(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("first run: %w", err)
	}
	second, err := engine.Run(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("second run: %w", err)
	}

	report := &Report{Results: make([]TrialResult, 0, len(first))}
	if len(first) != len(second) {
		report.add(TrialResult{
			Divergences: []FieldDivergence{{Field: "Trials", Expected: len(first), Actual: len(second)}},
		})
		return report, nil
	}
	for i := range first {
		report.add(verifyPair(first[i], second[i]))
	}
	return report, nil
}
