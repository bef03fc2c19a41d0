package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/engine"
	"github.com/devskill-org/gridopt/internal/series"
)

func TestNew_ReturnsNilWhenPortNotPositive(t *testing.T) {
	assert.Nil(t, New(engine.New(), 0))
	assert.Nil(t, New(engine.New(), -1))
}

func TestWsHandler_SendsInitialStatusOnConnect(t *testing.T) {
	eng := engine.New()
	s := New(eng, 9090)
	require.NotNil(t, s)

	srv := httptest.NewServer(s.server.Handler)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var status engine.Status
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, engine.PhaseIdle, status.Phase)
}

func TestBroadcast_NoopWithNoConnectedClients(t *testing.T) {
	s := New(engine.New(), 9090)
	require.NotNil(t, s)
	assert.NotPanics(t, func() {
		s.broadcast(engine.Status{Phase: engine.PhaseBuilding})
	})
}

func TestForwardStatus_RelaysEngineUpdatesToConnectedClients(t *testing.T) {
	eng := engine.New()
	s := New(eng, 9090)
	require.NotNil(t, s)

	go s.forwardStatus()
	defer close(s.done)

	srv := httptest.NewServer(s.server.Handler)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Drain the initial status sent on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var initial engine.Status
	require.NoError(t, conn.ReadJSON(&initial))

	// Drive the engine into PhaseFailed via an already-cancelled context
	// and confirm the update reaches the websocket client.
	failedEngineCtx(t, eng)

	// Optimize broadcasts PhaseBuilding before it observes the cancelled
	// context and moves to PhaseFailed; read until the terminal phase
	// arrives or the deadline trips.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update engine.Status
	for update.Phase != engine.PhaseFailed {
		require.NoError(t, conn.ReadJSON(&update))
	}
	assert.Equal(t, engine.PhaseFailed, update.Phase)
}

// failedEngineCtx drives eng into PhaseFailed by running Optimize with
// an already-cancelled context: Optimize checks ctx.Err() immediately
// after entering PhaseBuilding, before it ever dereferences
// regions/links/cfg, so nil arguments are safe here.
func failedEngineCtx(t *testing.T, eng *engine.Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Optimize(ctx, "run-1", nil, nil, series.DatetimeIndex{}, nil)
	require.Error(t, err)
}
