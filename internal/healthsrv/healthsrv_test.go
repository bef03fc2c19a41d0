package healthsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/engine"
	"github.com/devskill-org/gridopt/internal/series"
)

func TestNew_ReturnsNilWhenPortNotPositive(t *testing.T) {
	assert.Nil(t, New(engine.New(), 0))
	assert.Nil(t, New(engine.New(), -1))
}

func TestHealthHandler_ReportsHealthyWhenEngineIdle(t *testing.T) {
	hs := New(engine.New(), 8080)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	hs.healthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, string(engine.PhaseIdle), resp.Run.Phase)
}

func TestHealthHandler_ReportsUnhealthyWhenEngineFailed(t *testing.T) {
	eng := failedEngine(t)

	hs := New(eng, 8080)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	hs.healthHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.NotEmpty(t, resp.Run.Err)
}

func TestHealthHandler_RejectsNonGet(t *testing.T) {
	hs := New(engine.New(), 8080)
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()

	hs.healthHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadinessHandler_NotReadyWhenFailed(t *testing.T) {
	eng := failedEngine(t)

	hs := New(eng, 8080)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	hs.readinessHandler(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ready"])
}

func TestReadinessHandler_ReadyWhileFreshlyIdle(t *testing.T) {
	hs := New(engine.New(), 8080)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	hs.readinessHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootHandler_404sOnUnknownPath(t *testing.T) {
	hs := New(engine.New(), 8080)
	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()

	hs.rootHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormatUptime_PicksCoarsestNonZeroUnit(t *testing.T) {
	assert.Equal(t, "45s", formatUptime(45*time.Second))
	assert.Equal(t, "2m5s", formatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h0m3s", formatUptime(time.Hour+3*time.Second))
}

// failedEngine drives a fresh Engine into PhaseFailed by running
// Optimize with an already-cancelled context: Optimize checks ctx.Err()
// immediately after entering PhaseBuilding, before it ever dereferences
// regions/links/cfg, so nil arguments are safe here.
func failedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Optimize(ctx, "run-1", nil, nil, series.DatetimeIndex{}, nil)
	require.Error(t, err)
	return eng
}
