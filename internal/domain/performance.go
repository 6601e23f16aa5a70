package domain

// PerformanceMetrics holds IRR and DPI for one cash-flow series.
// A nil value means the metric is undefined for the series; the matching
// error field says why. Computed on demand, never cached.
type PerformanceMetrics struct {
	IRR      *float64 `json:"irr"`
	DPI      *float64 `json:"dpi"`
	IRRError string   `json:"irr_error,omitempty"`
	DPIError string   `json:"dpi_error,omitempty"`
}

// IRRDefined reports whether IRR could be computed.
func (m PerformanceMetrics) IRRDefined() bool {
	return m.IRR != nil
}

// DPIDefined reports whether DPI could be computed.
func (m PerformanceMetrics) DPIDefined() bool {
	return m.DPI != nil
}

// IRRPct returns IRR in percent and whether it is defined.
func (m PerformanceMetrics) IRRPct() (float64, bool) {
	if m.IRR == nil {
		return 0, false
	}
	return *m.IRR * 100, true
}
