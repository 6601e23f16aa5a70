// Package verification checks that Monte Carlo trials reproduce exactly
// from their seeds.
package verification

import (
	"math"

	"jcurve-lab/internal/domain"
)

// FloatTolerance is the default tolerance for CompareSeries.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string `json:"field"`
	Period   int    `json:"period,omitempty"` // 1-based, 0 for scalar fields
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// TrialResult contains the result of verifying a single trial.
type TrialResult struct {
	Index         int               `json:"index"`
	Match         bool              `json:"match"`
	Divergences   []FieldDivergence `json:"divergences,omitempty"`
	StoredFinal   float64           `json:"stored_final"`   // final cumulative of stored trial
	ReplayedFinal float64           `json:"replayed_final"` // final cumulative of replayed trial
}

// Report contains results for batch verification.
type Report struct {
	TotalTrials     int           `json:"total_trials"`
	MatchedTrials   int           `json:"matched_trials"`
	DivergentTrials int           `json:"divergent_trials"`
	Results         []TrialResult `json:"results"`
}

// OK reports whether every trial matched.
func (r *Report) OK() bool {
	return r.DivergentTrials == 0
}

func (r *Report) add(res TrialResult) {
	r.TotalTrials++
	if res.Match {
		r.MatchedTrials++
	} else {
		r.DivergentTrials++
	}
	r.Results = append(r.Results, res)
}

// CompareTrials compares two trials bit for bit and returns divergences.
func CompareTrials(stored, replayed *domain.Trial) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.Index != replayed.Index {
		divergences = append(divergences, FieldDivergence{
			Field:    "Index",
			Expected: stored.Index,
			Actual:   replayed.Index,
		})
	}

	if stored.Seed != replayed.Seed {
		divergences = append(divergences, FieldDivergence{
			Field:    "Seed",
			Expected: stored.Seed,
			Actual:   replayed.Seed,
		})
	}

	if len(stored.CashFlows) != len(replayed.CashFlows) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Periods",
			Expected: len(stored.CashFlows),
			Actual:   len(replayed.CashFlows),
		})
		return divergences
	}

	for i, cf := range stored.CashFlows {
		other := replayed.CashFlows[i]
		if cf.Period != other.Period {
			divergences = append(divergences, FieldDivergence{
				Field:    "Period",
				Period:   i + 1,
				Expected: cf.Period,
				Actual:   other.Period,
			})
		}
		if math.Float64bits(cf.Amount) != math.Float64bits(other.Amount) {
			divergences = append(divergences, FieldDivergence{
				Field:    "CashFlow",
				Period:   i + 1,
				Expected: cf.Amount,
				Actual:   other.Amount,
			})
		}
	}

	divergences = append(divergences, compareSeries("Cumulative", stored.Cumulative, replayed.Cumulative, 0)...)
	return divergences
}

// CompareSeries compares two per-period series within tol.
func CompareSeries(expected, actual []float64, tol float64) []FieldDivergence {
	return compareSeries("Value", expected, actual, tol)
}

func compareSeries(field string, expected, actual []float64, tol float64) []FieldDivergence {
	if len(expected) != len(actual) {
		return []FieldDivergence{{
			Field:    field + "Length",
			Expected: len(expected),
			Actual:   len(actual),
		}}
	}

	var divergences []FieldDivergence
	for i := range expected {
		if !floatEquals(expected[i], actual[i], tol) {
			divergences = append(divergences, FieldDivergence{
				Field:    field,
				Period:   i + 1,
				Expected: expected[i],
				Actual:   actual[i],
			})
		}
	}
	return divergences
}

// floatEquals compares within tol. A zero tol means bit-identical.
func floatEquals(a, b, tol float64) bool {
	if tol == 0 {
		return math.Float64bits(a) == math.Float64bits(b)
	}
	return math.Abs(a-b) <= tol
}

func verifyPair(stored, replayed *domain.Trial) TrialResult {
	divergences := CompareTrials(stored, replayed)
	return TrialResult{
		Index:         stored.Index,
		Match:         len(divergences) == 0,
		Divergences:   divergences,
		StoredFinal:   stored.Cumulative.Final(),
		ReplayedFinal: replayed.Cumulative.Final(),
	}
}
