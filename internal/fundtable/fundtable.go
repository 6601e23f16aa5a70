// Package fundtable generates, stores and describes a synthetic table of
// private-equity fund metadata. The table is standalone: nothing in the
// simulation core reads it.
package fundtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"jcurve-lab/internal/domain"
)

// Column headers, in file order.
const (
	ColFundName         = "Fund Name"
	ColVintageYear      = "Vintage Year"
	ColCommittedCapital = "Committed Capital (M)"
	ColIRR              = "IRR (%)"
	ColMOIC             = "MOIC"
)

// Header is the CSV header row.
var Header = []string{ColFundName, ColVintageYear, ColCommittedCapital, ColIRR, ColMOIC}

// Generation ranges.
const (
	MinVintage   = 2000
	MaxVintage   = 2020 // inclusive
	MinCommitted = 50.0
	MaxCommitted = 500.0
	MinIRRPct    = 5.0
	MaxIRRPct    = 25.0
	MinMOIC      = 1.2
	MaxMOIC      = 3.0

	// Decimal places written for float columns.
	Precision = 4
)

var (
	// ErrEmptyTable is returned when a CSV has no data rows.
	ErrEmptyTable = errors.New("fund table has no rows")

	// ErrBadHeader is returned when the CSV header does not match Header.
	ErrBadHeader = errors.New("unexpected fund table header")
)

// Generate returns n synthetic funds named "Fund 1".."Fund n". The same
// seed always yields the same table.
func Generate(n int, seed uint64) ([]domain.FundRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: fund count must be positive, got %d", domain.ErrValidation, n)
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	records := make([]domain.FundRecord, n)
	for i := range records {
		records[i] = domain.FundRecord{
			FundName:           "Fund " + strconv.Itoa(i+1),
			VintageYear:        MinVintage + rng.IntN(MaxVintage-MinVintage+1),
			CommittedCapitalMM: uniform(rng, MinCommitted, MaxCommitted),
			IRRPct:             uniform(rng, MinIRRPct, MaxIRRPct),
			MOIC:               uniform(rng, MinMOIC, MaxMOIC),
		}
	}
	return records, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// WriteCSV writes records with a header row. Float columns are rounded to
// Precision decimal places.
func WriteCSV(w io.Writer, records []domain.FundRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.FundName,
			strconv.Itoa(r.VintageYear),
			formatDecimal(r.CommittedCapitalMM),
			formatDecimal(r.IRRPct),
			formatDecimal(r.MOIC),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", r.FundName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDecimal(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(Precision)
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) ([]domain.FundRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	records := make([]domain.FundRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkHeader(row []string) error {
	if len(row) != len(Header) {
		return fmt.Errorf("%w: %d columns, expected %d", ErrBadHeader, len(row), len(Header))
	}
	for i, h := range Header {
		if strings.TrimSpace(row[i]) != h {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrBadHeader, i+1, row[i], h)
		}
	}
	return nil
}

func parseRow(row []string) (domain.FundRecord, error) {
	vintage, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return domain.FundRecord{}, fmt.Errorf("%s: %w", ColVintageYear, err)
	}
	committed, err := parseDecimal(ColCommittedCapital, row[2])
	if err != nil {
		return domain.FundRecord{}, err
	}
	irr, err := parseDecimal(ColIRR, row[3])
	if err != nil {
		return domain.FundRecord{}, err
	}
	moic, err := parseDecimal(ColMOIC, row[4])
	if err != nil {
		return domain.FundRecord{}, err
	}
	return domain.FundRecord{
		FundName:           row[0],
		VintageYear:        vintage,
		CommittedCapitalMM: committed,
		IRRPct:             irr,
		MOIC:               moic,
	}, nil
}

func parseDecimal(col, s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return d.InexactFloat64(), nil
}
