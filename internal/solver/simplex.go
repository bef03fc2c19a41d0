package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/devskill-org/gridopt/internal/apperror"
)

// Options controls a single solve attempt: timeout and an IPM
// termination tolerance shift. The bundled SimplexBackend honors Tol
// and ShiftIPMTerminationByOrders (both through tolerance()) and
// ignores TimeoutMinutes, which is accepted so PreferenceList can treat
// every Backend uniformly and an external backend could use it.
type Options struct {
	TimeoutMinutes               int
	ShiftIPMTerminationByOrders  int
	Tol                          float64
}

// DefaultOptions returns a 30-minute timeout and a conservative 1e-7
// tolerance with no shift; a caller that sets
// ShiftIPMTerminationByOrders multiplies that tolerance by 10^N when it
// is applied.
func DefaultOptions() Options {
	return Options{TimeoutMinutes: 30, Tol: 1e-7}
}

func (o Options) tolerance() float64 {
	tol := o.Tol
	if tol <= 0 {
		tol = 1e-7
	}
	if o.ShiftIPMTerminationByOrders != 0 {
		tol *= math.Pow(10, float64(o.ShiftIPMTerminationByOrders))
	}
	return tol
}

// Backend solves a Problem, mirroring solver_util.py's per-solver
// dispatch shape: each backend advertises a Name and whether it is
// Available (i.e. linked into this build) before PreferenceList tries it.
type Backend interface {
	Name() string
	Available() bool
	Solve(p *Problem, opts Options) (*Solution, error)
}

// PreferenceList walks backends in order and returns the first solve
// from an Available one, matching solve_problem's solver_preference
// walk in solver_util.py. If preferredName is non-empty, only the
// backend with that Name is tried, and it is an apperror.ConfigError
// for it to be unavailable.
func PreferenceList(backends []Backend, preferredName string, p *Problem, opts Options) (*Solution, error) {
	if preferredName != "" {
		for _, b := range backends {
			if b.Name() != preferredName {
				continue
			}
			if !b.Available() {
				return nil, apperror.NewConfigError("solver", fmt.Sprintf("backend %q is not available in this build", preferredName))
			}
			return b.Solve(p, opts)
		}
		return nil, apperror.NewConfigError("solver", fmt.Sprintf("unknown backend %q", preferredName))
	}
	var lastErr error
	for _, b := range backends {
		if !b.Available() {
			continue
		}
		sol, err := b.Solve(p, opts)
		if err == nil {
			return sol, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = apperror.NewConfigError("solver", "no backend in the preference list is available")
	}
	return nil, lastErr
}

// SimplexBackend is the one bundled solver: a dense-tableau two-phase
// simplex built on gonum.org/v1/gonum/optimize/convex/lp, the only LP
// solving routine available anywhere in the dependency pack. It
// materializes the sparse Problem into a dense equality-standard-form
// matrix (bounded variables shifted and upper-bounded with an extra
// row, inequalities folded into equalities with slack/surplus columns)
// because gonum's lp.Simplex only accepts that form; this trades the
// streaming construction of internal/lp for a bundled-backend-sized
// problem, which is an accepted limitation for the demonstration engine
// (see DESIGN.md).
type SimplexBackend struct{}

func (SimplexBackend) Name() string      { return "Simplex" }
func (SimplexBackend) Available() bool   { return true }

func (SimplexBackend) Solve(p *Problem, opts Options) (*Solution, error) {
	n := len(p.Vars)
	shifted := make([]float64, n) // lower bound subtracted from each var

	// Start from the caller's rows, adding one row per finite upper bound.
	rows := make([]Constraint, 0, len(p.Constraints)+n)
	rows = append(rows, p.Constraints...)
	for i, v := range p.Vars {
		lo := v.Lower
		if math.IsInf(lo, -1) {
			lo = 0
		}
		shifted[i] = lo
		if !math.IsInf(v.Upper, 1) {
			rows = append(rows, Constraint{
				Name:  fmt.Sprintf("%s_ub", v.Name),
				Terms: []Term{{Var: i, Coef: 1}},
				Sense: LE,
				RHS:   v.Upper - lo,
			})
		}
	}

	// Shift every row's RHS by the lower-bound offset of the variables
	// it references, so the standard-form problem is over x' = x - lower >= 0.
	type stdRow struct {
		coefs map[int]float64
		sense Sense
		rhs   float64
	}
	std := make([]stdRow, len(rows))
	for ri, c := range rows {
		coefs := make(map[int]float64, len(c.Terms))
		rhs := c.RHS
		for _, t := range c.Terms {
			coefs[t.Var] += t.Coef
			rhs -= t.Coef * shifted[t.Var]
		}
		std[ri] = stdRow{coefs: coefs, sense: c.Sense, rhs: rhs}
	}

	// Normalize RHS >= 0 by flipping the row sign.
	for i := range std {
		if std[i].rhs < 0 {
			std[i].rhs = -std[i].rhs
			for v, c := range std[i].coefs {
				std[i].coefs[v] = -c
			}
			switch std[i].sense {
			case LE:
				std[i].sense = GE
			case GE:
				std[i].sense = LE
			}
		}
	}

	// Append one slack/surplus column per inequality row.
	numSlack := 0
	for _, r := range std {
		if r.sense != EQ {
			numSlack++
		}
	}
	total := n + numSlack
	A := mat.NewDense(len(std), total, nil)
	b := make([]float64, len(std))
	c := make([]float64, total)
	for i, v := range p.Vars {
		c[i] = v.Obj
	}

	slackCol := n
	for ri, r := range std {
		for v, coef := range r.coefs {
			A.Set(ri, v, coef)
		}
		b[ri] = r.rhs
		switch r.sense {
		case LE:
			A.Set(ri, slackCol, 1)
			slackCol++
		case GE:
			A.Set(ri, slackCol, -1)
			slackCol++
		case EQ:
			// no slack column
		}
	}

	if len(std) == 0 {
		return &Solution{Status: "Optimal", Values: make([]float64, n), ObjectiveValue: 0}, nil
	}

	opt, xStar, err := lp.Simplex(c, A, b, opts.tolerance(), nil)
	if err != nil {
		return nil, apperror.NewInfeasibilityError("Simplex", err.Error())
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = xStar[i] + shifted[i]
	}
	return &Solution{Status: "Optimal", Values: values, ObjectiveValue: opt}, nil
}
