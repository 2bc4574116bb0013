// Package health exposes an HTTP health/readiness endpoint reporting the
// state of the most recent dispatch run, grounded on the teacher's
// scheduler.HealthServer.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// RunState is a snapshot of the latest dispatch run's progress.
type RunState struct {
	RunID          string
	Stage          string // "idle", "loading", "solving", "done", "failed"
	ObjectiveValue float64
	Err            error
	UpdatedAt      time.Time
}

// Response is the JSON body returned by /health.
type Response struct {
	Status         string  `json:"status"`
	Timestamp      string  `json:"timestamp"`
	Uptime         string  `json:"uptime"`
	Stage          string  `json:"stage"`
	RunID          string  `json:"run_id,omitempty"`
	ObjectiveValue float64 `json:"objective_value,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Server serves /health and /ready from an in-memory RunState updated by
// the caller via SetState.
type Server struct {
	port      int
	server    *http.Server
	startTime time.Time

	mu    sync.RWMutex
	state RunState
}

// New creates a Server. Returns nil if port <= 0.
func New(port int) *Server {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	s := &Server{
		port:      port,
		startTime: time.Now(),
		state:     RunState{Stage: "idle", UpdatedAt: time.Now()},
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readinessHandler)
	return s
}

// SetState updates the state reported by the health endpoint.
func (s *Server) SetState(state RunState) {
	if s == nil {
		return
	}
	state.UpdatedAt = time.Now()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Start launches the HTTP listener.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("health: server error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	resp := Response{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Uptime:         formatUptime(time.Since(s.startTime)),
		Stage:          state.Stage,
		RunID:          state.RunID,
		ObjectiveValue: state.ObjectiveValue,
	}
	if state.Err != nil {
		resp.Status = "unhealthy"
		resp.Error = state.Err.Error()
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	stage := s.state.Stage
	s.mu.RUnlock()

	ready := stage != "failed"
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
