package fundtable

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcurve-lab/internal/domain"
)

func TestGenerate_Ranges(t *testing.T) {
	records, err := Generate(200, 42)
	require.NoError(t, err)
	require.Len(t, records, 200)

	assert.Equal(t, "Fund 1", records[0].FundName)
	assert.Equal(t, "Fund 200", records[199].FundName)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.VintageYear, MinVintage)
		assert.LessOrEqual(t, r.VintageYear, MaxVintage)
		assert.GreaterOrEqual(t, r.CommittedCapitalMM, MinCommitted)
		assert.Less(t, r.CommittedCapitalMM, MaxCommitted)
		assert.GreaterOrEqual(t, r.IRRPct, MinIRRPct)
		assert.Less(t, r.IRRPct, MaxIRRPct)
		assert.GreaterOrEqual(t, r.MOIC, MinMOIC)
		assert.Less(t, r.MOIC, MaxMOIC)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(10, 7)
	require.NoError(t, err)
	b, err := Generate(10, 7)
	require.NoError(t, err)
	c, err := Generate(10, 8)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = Generate(0, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCSV_RoundTrip(t *testing.T) {
	records := []domain.FundRecord{
		{FundName: "Fund 1", VintageYear: 2005, CommittedCapitalMM: 123.456789, IRRPct: 12.5, MOIC: 1.75},
		{FundName: "Fund 2", VintageYear: 2019, CommittedCapitalMM: 480, IRRPct: 6.25, MOIC: 2.9},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Fund Name,Vintage Year,Committed Capital (M),IRR (%),MOIC", lines[0])
	assert.Equal(t, "Fund 1,2005,123.4568,12.5000,1.7500", lines[1])

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fund 1", got[0].FundName)
	assert.InDelta(t, 123.4568, got[0].CommittedCapitalMM, 1e-12)
	assert.Equal(t, records[1], got[1])
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyTable))

	_, err = ReadCSV(strings.NewReader("Fund Name,Vintage Year,Committed Capital (M),IRR (%),MOIC\n"))
	assert.True(t, errors.Is(err, ErrEmptyTable))

	_, err = ReadCSV(strings.NewReader("Name,Year\nFund 1,2000\n"))
	assert.True(t, errors.Is(err, ErrBadHeader))

	_, err = ReadCSV(strings.NewReader("Fund Name,Vintage Year,Committed Capital (M),IRR (%),MOIC\nFund 1,2000,abc,1,1\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestDescribe(t *testing.T) {
	records := []domain.FundRecord{
		{VintageYear: 2000, IRRPct: 10, MOIC: 1.5},
		{VintageYear: 2001, IRRPct: 20, MOIC: 2.0},
		{VintageYear: 2002, IRRPct: 30, MOIC: 2.5},
		{VintageYear: 2003, IRRPct: 40, MOIC: 3.0},
	}

	summaries, err := Describe(records, KeyMetrics...)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	irr := summaries[0]
	assert.Equal(t, ColIRR, irr.Column)
	assert.Equal(t, 4, irr.Count)
	assert.InDelta(t, 25, irr.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(500.0/3.0), irr.Std, 1e-12) // sample std
	assert.Equal(t, 10.0, irr.Min)
	assert.InDelta(t, 17.5, irr.P25, 1e-12)
	assert.InDelta(t, 25, irr.P50, 1e-12)
	assert.InDelta(t, 32.5, irr.P75, 1e-12)
	assert.Equal(t, 40.0, irr.Max)

	all, err := Describe(records)
	require.NoError(t, err)
	assert.Len(t, all, len(NumericColumns))

	single, err := Describe(records[:1], ColMOIC)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(single[0].Std))

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Describe(records, "AUM")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRenderDescribe(t *testing.T) {
	summaries, err := Describe([]domain.FundRecord{{IRRPct: 10, MOIC: 2}, {IRRPct: 20, MOIC: 3}}, KeyMetrics...)
	require.NoError(t, err)

	out := RenderDescribe(summaries)
	assert.Contains(t, out, "IRR (%)")
	assert.Contains(t, out, "MOIC")
	for _, stat := range []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"} {
		assert.Contains(t, out, stat)
	}
}
