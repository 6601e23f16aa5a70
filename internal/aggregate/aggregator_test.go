package aggregate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/montecarlo"
)

func makeTrial(index int, cumulative ...float64) *domain.Trial {
	return &domain.Trial{Index: index, Cumulative: cumulative}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.05, 1.2},
		{0.25, 2},
		{0.5, 3},
		{0.95, 4.8},
		{1, 5},
	}

	for _, tt := range tests {
		got := Percentile(sorted, tt.q)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.q, got, tt.want)
		}
	}
}

func TestPercentile_SingleAndEmpty(t *testing.T) {
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.05))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.95))
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
}

func TestQuantiles_DoesNotMutate(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	got := Quantiles(values, 0.5, 0.25)
	assert.Equal(t, []float64{3, 2}, got)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestAggregate_MeanAndBand(t *testing.T) {
	trials := []*domain.Trial{
		makeTrial(0, -10, 0, 10),
		makeTrial(1, -20, 5, 30),
		makeTrial(2, -30, 10, 20),
		makeTrial(3, -40, 15, 40),
		makeTrial(4, -50, 20, 50),
	}

	agg, err := Aggregate(trials)
	require.NoError(t, err)
	require.Len(t, agg.Periods, 3)
	assert.Equal(t, [2]float64{0.05, 0.95}, agg.Percentiles)
	assert.Equal(t, 5, agg.NumTrials())

	p1 := agg.Periods[0]
	assert.Equal(t, 1, p1.Period)
	assert.InDelta(t, -30, p1.Mean, 1e-12)
	assert.InDelta(t, -48, p1.Low, 1e-12)  // sorted -50..-10, idx 0.2
	assert.InDelta(t, -12, p1.High, 1e-12) // idx 3.8

	p3 := agg.Periods[2]
	assert.InDelta(t, 30, p3.Mean, 1e-12)
	assert.InDelta(t, 12, p3.Low, 1e-12)  // sorted 10,20,30,40,50
	assert.InDelta(t, 48, p3.High, 1e-12) // idx 3.8
}

func TestAggregate_CustomPercentiles(t *testing.T) {
	trials := []*domain.Trial{makeTrial(0, 1), makeTrial(1, 2), makeTrial(2, 3)}

	agg, err := Aggregate(trials, 0.25, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, agg.Periods[0].Low, 1e-12)
	assert.InDelta(t, 2.5, agg.Periods[0].High, 1e-12)
}

func TestAggregate_SingleTrial(t *testing.T) {
	agg, err := Aggregate([]*domain.Trial{makeTrial(0, -5, 3, 9)})
	require.NoError(t, err)

	for i, want := range []float64{-5, 3, 9} {
		p := agg.Periods[i]
		assert.Equal(t, want, p.Mean)
		assert.Equal(t, want, p.Low)
		assert.Equal(t, want, p.High)
	}
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil)
	assert.True(t, errors.Is(err, ErrNoTrials))

	trials := []*domain.Trial{makeTrial(0, 1, 2), makeTrial(1, 1)}
	_, err = Aggregate(trials)
	assert.ErrorIs(t, err, domain.ErrValidation)

	ok := []*domain.Trial{makeTrial(0, 1)}
	tests := [][]float64{
		{0.5},
		{0.05, 0.5, 0.95},
		{0.95, 0.05},
		{-0.1, 0.9},
		{0.1, 1.1},
		{math.NaN(), 0.9},
	}
	for _, ps := range tests {
		_, err := Aggregate(ok, ps...)
		assert.ErrorIs(t, err, domain.ErrValidation, "percentiles %v", ps)
	}
}

func TestAggregate_Rows(t *testing.T) {
	trials := []*domain.Trial{makeTrial(0, 1, 2), makeTrial(1, 3, 4)}
	agg, err := Aggregate(trials)
	require.NoError(t, err)

	rows := agg.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].Period)
	assert.Equal(t, []float64{2, 4}, rows[1].Trials)
	assert.InDelta(t, 3, rows[1].Mean, 1e-12)
}

// The band must contain the mean under the engine's bounded noise. Checked
// empirically over many seeds.
func TestAggregate_BandContainsMean(t *testing.T) {
	engine := montecarlo.NewEngine(montecarlo.Options{})

	for s := int64(0); s < 50; s++ {
		seed := s
		params := domain.SimulationParameters{
			Years:              10,
			Commitments:        100,
			PeakDrawdownYear:   4,
			CapitalCallPattern: []float64{0.4, 0.3, 0.2, 0.1},
			NSimulations:       100,
			RandomSeed:         &seed,
		}
		trials, err := engine.Run(context.Background(), params)
		require.NoError(t, err)

		agg, err := Aggregate(trials)
		require.NoError(t, err)

		for _, p := range agg.Periods {
			if p.Low > p.Mean+1e-9 || p.Mean > p.High+1e-9 {
				t.Fatalf("seed %d period %d: band [%f, %f] excludes mean %f", s, p.Period, p.Low, p.High, p.Mean)
			}
		}
	}
}

func TestBreakEvenAndTrough(t *testing.T) {
	curve := []float64{-40, -70, -90, -100, -90, -70, -40, 0, 50, 120}
	assert.Equal(t, 8, BreakEvenPeriod(curve))

	v, p := Trough(curve)
	assert.Equal(t, -100.0, v)
	assert.Equal(t, 4, p)

	assert.Equal(t, 0, BreakEvenPeriod([]float64{-1, -2, -0.5}))
	assert.Equal(t, 1, BreakEvenPeriod([]float64{1, 2}))

	v, p = Trough(nil)
	assert.Zero(t, v)
	assert.Zero(t, p)
}
