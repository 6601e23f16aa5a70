package domain

import "errors"

// Error kinds shared by all packages. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	// ErrValidation is returned when parameters violate their shape or
	// consistency contract. It is detected before any computation starts.
	ErrValidation = errors.New("validation error")

	// ErrNoSolution is returned when the IRR root-finder cannot bracket a
	// root or exhausts its iteration budget.
	ErrNoSolution = errors.New("no solution")

	// ErrDivision is returned when a ratio denominator is zero.
	ErrDivision = errors.New("division by zero")
)
