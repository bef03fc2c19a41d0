// Package engine is the top-level orchestrator: it wires the LP
// builder, solver, solution extractor, spot-price estimator, and
// statistics aggregator into a single run (build -> solve -> extract
// -> price -> stats) behind one call, Engine.Optimize, with a Status
// broadcast for progress reporting that internal/live and
// internal/healthsrv both read via Engine.Status().
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devskill-org/gridopt/internal/apperror"
	"github.com/devskill-org/gridopt/internal/config"
	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/extract"
	"github.com/devskill-org/gridopt/internal/lp"
	"github.com/devskill-org/gridopt/internal/price"
	"github.com/devskill-org/gridopt/internal/series"
	"github.com/devskill-org/gridopt/internal/solver"
	"github.com/devskill-org/gridopt/internal/stats"
)

// Phase names one step of a run, in the order Optimize executes them.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseBuilding  Phase = "building"
	PhaseSolving   Phase = "solving"
	PhaseExtracting Phase = "extracting"
	PhasePricing   Phase = "pricing"
	PhaseStats     Phase = "stats"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// Status is a point-in-time snapshot of the current run, broadcast to
// subscribers after every phase transition.
type Status struct {
	Phase     Phase
	RunName   string
	StartedAt time.Time
	UpdatedAt time.Time
	Err       string
}

// Result is everything one Optimize call produces.
type Result struct {
	Regions    []entity.Region
	Stats      []stats.Row
	SolverUsed string
}

// Engine holds the mutable run status and its subscriber list; an
// Engine is safe to call Optimize on from one goroutine at a time
// while other goroutines read Status/Subscribe concurrently.
type Engine struct {
	mu        sync.RWMutex
	status    Status
	listeners []chan Status

	Backends []solver.Backend
}

// New returns an idle Engine with the bundled simplex backend
// registered; callers may append external backends to e.Backends
// before calling Optimize, per spec.md §4.3's preference-list design.
func New() *Engine {
	return &Engine{
		status:   Status{Phase: PhaseIdle, UpdatedAt: time.Now()},
		Backends: []solver.Backend{solver.SimplexBackend{}},
	}
}

// Status returns the current run status.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Subscribe registers a channel that receives every future status
// update. The channel is buffered; a slow reader drops updates rather
// than blocking the engine (spec.md §6 live progress is best-effort).
func (e *Engine) Subscribe() <-chan Status {
	ch := make(chan Status, 16)
	e.mu.Lock()
	e.listeners = append(e.listeners, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) setPhase(runName string, phase Phase, err error) {
	e.mu.Lock()
	if e.status.StartedAt.IsZero() || phase == PhaseBuilding {
		e.status.StartedAt = time.Now()
	}
	e.status.Phase = phase
	e.status.RunName = runName
	e.status.UpdatedAt = time.Now()
	if err != nil {
		e.status.Err = err.Error()
	} else {
		e.status.Err = ""
	}
	snapshot := e.status
	listeners := append([]chan Status(nil), e.listeners...)
	e.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Optimize runs one full build/solve/extract/price/stats pass over
// regions (spec.md §1, §4.2-§4.7). idx is the shared hourly index all
// region frames are aligned to.
func (e *Engine) Optimize(ctx context.Context, runName string, regions []entity.Region, links []lp.Link, idx series.DatetimeIndex, cfg *config.Config) (*Result, error) {
	e.setPhase(runName, PhaseBuilding, nil)
	if err := ctx.Err(); err != nil {
		e.setPhase(runName, PhaseFailed, err)
		return nil, err
	}

	problem, ix, err := lp.Build(regions, links, idx, cfg.LPConfig())
	if err != nil {
		e.setPhase(runName, PhaseFailed, err)
		return nil, fmt.Errorf("engine: failed to build LP: %w", err)
	}

	e.setPhase(runName, PhaseSolving, nil)
	sol, err := solver.PreferenceList(e.Backends, cfg.Solver, problem, cfg.SolverOptions())
	if err != nil {
		e.setPhase(runName, PhaseFailed, err)
		return nil, err
	}

	e.setPhase(runName, PhaseExtracting, nil)
	if err := extract.Run(regions, links, ix, sol); err != nil {
		e.setPhase(runName, PhaseFailed, err)
		return nil, fmt.Errorf("engine: failed to extract solution: %w", err)
	}

	e.setPhase(runName, PhasePricing, nil)
	if err := price.Run(regions, links, cfg.IncludeTransmissionLossInPrice); err != nil {
		e.setPhase(runName, PhaseFailed, err)
		return nil, fmt.Errorf("engine: failed to estimate prices: %w", err)
	}

	e.setPhase(runName, PhaseStats, nil)
	var rows []stats.Row
	opts := stats.Options{NumYears: cfg.NumYears(), ImportPPAPriceEURPerMWh: cfg.ImportPPAPriceEURPerMWh}
	for _, g := range regions {
		rows = append(rows, stats.Compute(g, links, opts)...)
	}

	solverUsed := cfg.Solver
	if solverUsed == "" {
		solverUsed = firstAvailableBackendName(e.Backends)
	}

	e.setPhase(runName, PhaseDone, nil)
	return &Result{Regions: regions, Stats: rows, SolverUsed: solverUsed}, nil
}

func firstAvailableBackendName(backends []solver.Backend) string {
	for _, b := range backends {
		if b.Available() {
			return b.Name()
		}
	}
	return ""
}

// RequireSolverAvailable is a small guard Optimize's caller can run
// before committing to a build: spec.md §4.3 expects a clear
// ConfigError rather than a late panic when no backend is registered.
func (e *Engine) RequireSolverAvailable() error {
	if len(e.Backends) == 0 {
		return apperror.NewConfigError("solver", "no solver backend registered")
	}
	return nil
}
