package domain

// Trial is one Monte Carlo draw. Created by the engine and never mutated
// afterwards.
type Trial struct {
	Index      int              `json:"index"` // 0-based trial index
	Seed       uint64           `json:"seed"`  // private generator seed
	CashFlows  CashFlowSeries   `json:"cash_flows"`
	Cumulative CumulativeSeries `json:"cumulative"`
}

// Name returns the column label used in tabular output (Sim_1, Sim_2, ...).
func (t *Trial) Name() string {
	return SimulationLabel(t.Index)
}
