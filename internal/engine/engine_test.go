package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/apperror"
	"github.com/devskill-org/gridopt/internal/solver"
)

func TestNew_StartsIdleWithBundledSimplexBackend(t *testing.T) {
	e := New()
	assert.Equal(t, PhaseIdle, e.Status().Phase)
	require.Len(t, e.Backends, 1)
	assert.Equal(t, "Simplex", e.Backends[0].Name())
}

func TestRequireSolverAvailable_ErrorsWhenNoBackendsRegistered(t *testing.T) {
	e := &Engine{}
	err := e.RequireSolverAvailable()
	require.Error(t, err)
	var appErr *apperror.ConfigError
	assert.ErrorAs(t, err, &appErr)
}

func TestRequireSolverAvailable_PassesWithDefaultEngine(t *testing.T) {
	e := New()
	assert.NoError(t, e.RequireSolverAvailable())
}

func TestSetPhase_BroadcastsToSubscribers(t *testing.T) {
	e := New()
	ch := e.Subscribe()

	e.setPhase("run-1", PhaseBuilding, nil)

	select {
	case status := <-ch:
		assert.Equal(t, PhaseBuilding, status.Phase)
		assert.Equal(t, "run-1", status.RunName)
		assert.Empty(t, status.Err)
	case <-time.After(time.Second):
		t.Fatal("expected a status update on the subscriber channel")
	}

	assert.Equal(t, PhaseBuilding, e.Status().Phase)
}

func TestSetPhase_RecordsErrorMessageOnFailure(t *testing.T) {
	e := New()
	e.setPhase("run-1", PhaseFailed, assert.AnError)
	assert.Equal(t, PhaseFailed, e.Status().Phase)
	assert.Equal(t, assert.AnError.Error(), e.Status().Err)
}

func TestFirstAvailableBackendName_SkipsUnavailableBackends(t *testing.T) {
	backends := []solver.Backend{unavailableBackend{}, solver.SimplexBackend{}}
	assert.Equal(t, "Simplex", firstAvailableBackendName(backends))
}

func TestFirstAvailableBackendName_EmptyWhenNoneAvailable(t *testing.T) {
	backends := []solver.Backend{unavailableBackend{}}
	assert.Equal(t, "", firstAvailableBackendName(backends))
}

type unavailableBackend struct{}

func (unavailableBackend) Name() string { return "Unavailable" }
func (unavailableBackend) Available() bool { return false }
func (unavailableBackend) Solve(p *solver.Problem, opts solver.Options) (*solver.Solution, error) {
	return nil, assert.AnError
}
