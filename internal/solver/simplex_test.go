package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplexBackendMinimizesBoxConstrainedLP(t *testing.T) {
	// minimize x + 2y s.t. x + y >= 4, x <= 3, y <= 3, x,y >= 0
	p := &Problem{}
	x := p.AddVar("x", 0, 3, 1)
	y := p.AddVar("y", 0, 3, 2)
	p.AddConstraint("demand", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, GE, 4)

	backend := SimplexBackend{}
	sol, err := backend.Solve(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Optimal", sol.Status)
	assert.InDelta(t, 3, sol.Value(x), 1e-6)
	assert.InDelta(t, 1, sol.Value(y), 1e-6)
	assert.InDelta(t, 5, sol.ObjectiveValue, 1e-6)
}

func TestSimplexBackendRespectsLowerBound(t *testing.T) {
	// minimize x s.t. x in [2,5]; optimum is x=2.
	p := &Problem{}
	x := p.AddVar("x", 2, 5, 1)
	backend := SimplexBackend{}
	sol, err := backend.Solve(p, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2, sol.Value(x), 1e-6)
}

func TestPreferenceListSkipsUnavailableBackends(t *testing.T) {
	p := &Problem{}
	x := p.AddVar("x", 0, 1, 1)
	p.AddConstraint("c", []Term{{Var: x, Coef: 1}}, GE, 0.5)

	unavailable := stubBackend{name: "HiGHS", available: false}
	sol, err := PreferenceList([]Backend{unavailable, SimplexBackend{}}, "", p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Optimal", sol.Status)
}

func TestPreferenceListRejectsUnknownPreferredName(t *testing.T) {
	p := &Problem{}
	_, err := PreferenceList([]Backend{SimplexBackend{}}, "CPLEX", p, DefaultOptions())
	require.Error(t, err)
}

type stubBackend struct {
	name      string
	available bool
}

func (s stubBackend) Name() string    { return s.name }
func (s stubBackend) Available() bool { return s.available }
func (s stubBackend) Solve(p *Problem, opts Options) (*Solution, error) {
	return nil, assertNever()
}

func assertNever() error {
	panic("unavailable backend must not be solved")
}
