package reporting

import (
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/performance"
)

func performanceBatch(irr, dpi *float64) performance.BatchResult {
	return performance.BatchResult{
		Metrics: []domain.PerformanceMetrics{
			{IRR: irr, DPI: dpi},
			{IRRError: "no solution: no sign change", DPIError: "division by zero"},
		},
		UndefinedIRR: 1,
		UndefinedDPI: 1,
	}
}
