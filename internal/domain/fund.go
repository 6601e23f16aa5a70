package domain

// FundRecord is one row of the synthetic fund metadata table.
type FundRecord struct {
	FundName           string  `json:"fund_name"`
	VintageYear        int     `json:"vintage_year"`         // 2000-2020
	CommittedCapitalMM float64 `json:"committed_capital_mm"` // millions
	IRRPct             float64 `json:"irr_pct"`
	MOIC               float64 `json:"moic"`
}
