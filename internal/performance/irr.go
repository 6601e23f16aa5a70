// Package performance computes fund performance metrics (IRR, DPI) for
// arbitrary cash-flow series.
package performance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"jcurve-lab/internal/domain"
)

// Method selects the IRR root-finding algorithm.
type Method string

const (
	MethodBisection Method = "bisection"
	MethodNewton    Method = "newton"
)

// ParseMethod parses a solver method name. Empty selects bisection.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodBisection:
		return MethodBisection, nil
	case MethodNewton:
		return MethodNewton, nil
	default:
		return "", fmt.Errorf("%w: unknown solver method %q", domain.ErrValidation, s)
	}
}

// Solver parameters.
const (
	DefaultGuess         = 0.1
	DefaultTolerance     = 1e-7 // on |NPV|
	DefaultMaxIterations = 1000

	minRate = -1.0
	maxRate = 1e6
)

// Solver configures the IRR root-find.
type Solver struct {
	Method        Method  `json:"method"`
	Guess         float64 `json:"guess"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
}

// DefaultSolver is used by IRR.
var DefaultSolver = Solver{
	Method:        MethodBisection,
	Guess:         DefaultGuess,
	Tolerance:     DefaultTolerance,
	MaxIterations: DefaultMaxIterations,
}

// bracketGrid holds candidate rates for locating a sign change of NPV.
var bracketGrid = []float64{-0.99, -0.9, -0.75, -0.5, -0.25, 0, 0.1, 0.25, 0.5, 1, 2, 5, 10, 100, 1000}

// Validate checks solver settings.
func (s Solver) Validate() error {
	if s.Method != MethodBisection && s.Method != MethodNewton {
		return fmt.Errorf("%w: unknown solver method %q", domain.ErrValidation, s.Method)
	}
	if math.IsNaN(s.Guess) || s.Guess <= minRate || s.Guess >= maxRate {
		return fmt.Errorf("%w: solver guess must be in (-1, 1e6), got %g", domain.ErrValidation, s.Guess)
	}
	if math.IsNaN(s.Tolerance) || s.Tolerance <= 0 {
		return fmt.Errorf("%w: solver tolerance must be positive, got %g", domain.ErrValidation, s.Tolerance)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: solver max iterations must be positive, got %d", domain.ErrValidation, s.MaxIterations)
	}
	return nil
}

// IRR returns the internal rate of return of cashFlows (period 0 first)
// using DefaultSolver.
func IRR(cashFlows []float64) (float64, error) {
	return DefaultSolver.IRR(cashFlows)
}

// NPV returns the net present value of cashFlows at rate, discounting
// period t by (1+rate)^t with t starting at 0.
func NPV(rate float64, cashFlows []float64) float64 {
	var npv float64
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// npvAndDeriv returns NPV and dNPV/drate.
func npvAndDeriv(rate float64, cashFlows []float64) (float64, float64) {
	var npv, deriv float64
	for t, cf := range cashFlows {
		ft := float64(t)
		npv += cf / math.Pow(1+rate, ft)
		deriv += -ft * cf / math.Pow(1+rate, ft+1)
	}
	return npv, deriv
}

// IRR finds the rate at which NPV is zero within s.Tolerance.
// Returns ErrNoSolution when the series has no sign change or the solver
// fails to converge.
func (s Solver) IRR(cashFlows []float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	for i, cf := range cashFlows {
		if math.IsNaN(cf) || math.IsInf(cf, 0) {
			return 0, fmt.Errorf("%w: cash flow %d is not finite", domain.ErrValidation, i)
		}
	}
	if !hasSignChange(cashFlows) {
		return 0, fmt.Errorf("%w: no sign change", domain.ErrNoSolution)
	}

	if s.Method == MethodNewton {
		return s.newton(cashFlows)
	}
	return s.bisection(cashFlows)
}

func hasSignChange(cashFlows []float64) bool {
	var pos, neg bool
	for _, cf := range cashFlows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

type bracket struct {
	lo, hi float64
}

// findBracket scans the rate grid for intervals where NPV changes sign and
// returns the one closest to the guess. An exact root on a grid point is
// returned as a degenerate bracket.
func (s Solver) findBracket(cashFlows []float64) (bracket, bool) {
	grid := append([]float64{s.Guess}, bracketGrid...)
	sort.Float64s(grid)

	var candidates []bracket
	prev := NPV(grid[0], cashFlows)
	for i := 1; i < len(grid); i++ {
		if grid[i] == grid[i-1] {
			continue
		}
		cur := NPV(grid[i], cashFlows)
		switch {
		case prev == 0:
			candidates = append(candidates, bracket{grid[i-1], grid[i-1]})
		case math.IsNaN(prev) || math.IsNaN(cur):
		case (prev < 0) != (cur < 0):
			candidates = append(candidates, bracket{grid[i-1], grid[i]})
		}
		prev = cur
	}
	if prev == 0 {
		last := grid[len(grid)-1]
		candidates = append(candidates, bracket{last, last})
	}
	if len(candidates) == 0 {
		return bracket{}, false
	}

	best := candidates[0]
	bestDist := distance(best, s.Guess)
	for _, c := range candidates[1:] {
		if d := distance(c, s.Guess); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

func distance(b bracket, x float64) float64 {
	switch {
	case x < b.lo:
		return b.lo - x
	case x > b.hi:
		return x - b.hi
	default:
		return 0
	}
}

// widenBracket extends the search past the grid ends: the low end moves
// toward -1 by tenths of its distance, the high end doubles up to maxRate.
// Each widening step uses one iteration of the budget.
func (s Solver) widenBracket(cashFlows []float64) (bracket, int, bool) {
	lo, hi := bracketGrid[0], bracketGrid[len(bracketGrid)-1]
	fLo, fHi := NPV(lo, cashFlows), NPV(hi, cashFlows)
	loDone, hiDone := false, false

	iter := 0
	for ; iter < s.MaxIterations && !(loDone && hiDone); iter++ {
		if !loDone {
			next := minRate + (lo-minRate)/10
			if next <= minRate || next == lo {
				loDone = true
			} else {
				f := NPV(next, cashFlows)
				if f == 0 {
					return bracket{next, next}, iter + 1, true
				}
				if !math.IsNaN(f) && !math.IsNaN(fLo) && (f < 0) != (fLo < 0) {
					return bracket{next, lo}, iter + 1, true
				}
				lo, fLo = next, f
			}
		}
		if !hiDone {
			next := math.Min(hi*2, maxRate)
			if next == hi {
				hiDone = true
			} else {
				f := NPV(next, cashFlows)
				if f == 0 {
					return bracket{next, next}, iter + 1, true
				}
				if !math.IsNaN(f) && !math.IsNaN(fHi) && (f < 0) != (fHi < 0) {
					return bracket{hi, next}, iter + 1, true
				}
				hi, fHi = next, f
			}
		}
	}
	return bracket{}, iter, false
}

func (s Solver) bisection(cashFlows []float64) (float64, error) {
	budget := s.MaxIterations
	b, ok := s.findBracket(cashFlows)
	if !ok {
		var used int
		b, used, ok = s.widenBracket(cashFlows)
		budget -= used
		if !ok {
			return 0, fmt.Errorf("%w: did not converge: no bracketing interval", domain.ErrNoSolution)
		}
	}
	if b.lo == b.hi {
		return b.lo, nil
	}

	lo, hi := b.lo, b.hi
	fLo := NPV(lo, cashFlows)
	for iter := 0; iter < budget; iter++ {
		mid := lo + (hi-lo)/2
		fMid := NPV(mid, cashFlows)
		if math.Abs(fMid) <= s.Tolerance || mid == lo || mid == hi {
			return mid, nil
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0, fmt.Errorf("%w: did not converge after %d iterations", domain.ErrNoSolution, s.MaxIterations)
}

func (s Solver) newton(cashFlows []float64) (float64, error) {
	rate := s.Guess
	for iter := 0; iter < s.MaxIterations; iter++ {
		npv, deriv := npvAndDeriv(rate, cashFlows)
		if math.Abs(npv) <= s.Tolerance {
			return rate, nil
		}
		if deriv == 0 || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
			return 0, fmt.Errorf("%w: did not converge: derivative vanished at iteration %d", domain.ErrNoSolution, iter)
		}
		next := rate - npv/deriv
		// Keep the rate inside (-1, 1e6); step halfway to the bound instead.
		if next <= minRate {
			next = (rate + minRate) / 2
		} else if next >= maxRate {
			next = (rate + maxRate) / 2
		}
		rate = next
	}
	return 0, fmt.Errorf("%w: did not converge after %d iterations", domain.ErrNoSolution, s.MaxIterations)
}
