// Package healthsrv is the engine's health/readiness/status HTTP
// server: a three-endpoint net/http.ServeMux with a graceful
// Start/Stop shape reporting engine run status.
package healthsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/devskill-org/gridopt/internal/engine"
)

// Response is the /health check response.
type Response struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Run       RunHealth     `json:"run"`
	System    SystemHealth  `json:"system"`
}

// RunHealth reports the current engine run, if any.
type RunHealth struct {
	Phase     string `json:"phase"`
	RunName   string `json:"run_name,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Err       string `json:"error,omitempty"`
}

// SystemHealth reports process-level health.
type SystemHealth struct {
	Uptime string `json:"uptime"`
}

// Server provides HTTP endpoints for health checking and monitoring.
type Server struct {
	eng       *engine.Engine
	server    *http.Server
	port      int
	startTime time.Time
}

// New creates a new health check server. Port <= 0 disables it.
func New(eng *engine.Engine, port int) *Server {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	hs := &Server{
		eng:       eng,
		port:      port,
		startTime: time.Now(),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readinessHandler)
	mux.HandleFunc("/status", hs.statusHandler)
	mux.HandleFunc("/", hs.rootHandler)

	return hs
}

// Start starts the health check server.
func (hs *Server) Start() error {
	if hs == nil {
		return nil
	}
	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("health server error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully stops the health check server.
func (hs *Server) Stop(ctx context.Context) error {
	if hs == nil {
		return nil
	}
	return hs.server.Shutdown(ctx)
}

func (hs *Server) runHealth() RunHealth {
	st := hs.eng.Status()
	rh := RunHealth{Phase: string(st.Phase), RunName: st.RunName, Err: st.Err}
	if !st.StartedAt.IsZero() {
		rh.StartedAt = st.StartedAt.UTC().Format(time.RFC3339)
	}
	if !st.UpdatedAt.IsZero() {
		rh.UpdatedAt = st.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return rh
}

func (hs *Server) isHealthy() bool {
	return hs.eng.Status().Phase != engine.PhaseFailed
}

func (hs *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
		Run:       hs.runHealth(),
		System:    SystemHealth{Uptime: formatUptime(time.Since(hs.startTime))},
	}
	if !hs.isHealthy() {
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (hs *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready := hs.eng.Status().Phase == engine.PhaseDone || hs.eng.Status().Phase == engine.PhaseIdle
	resp := map[string]any{
		"ready":     ready,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (hs *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"run":       hs.runHealth(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (hs *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "gridopt",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health": "Health check endpoint",
			"ready":  "Readiness check endpoint",
			"status": "Detailed run status endpoint",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
