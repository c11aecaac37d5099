// Package health exposes liveness and readiness endpoints for container orchestration.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/folio/core/buildinfo"
	"github.com/m3rciful/folio/core/logger"
)

// Server serves /healthz and /readyz.
type Server struct {
	http    *http.Server
	started time.Time
	ready   atomic.Bool
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// New builds a server listening on addr. It is not ready until SetReady(true).
func New(addr string) *Server {
	s := &Server{started: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Second))
	r.Use(accessLog)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// SetReady flips the readiness state reported by /readyz.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// Start runs the server and blocks until it stops.
func (s *Server) Start() error {
	logger.HTTP.Info("health server listening",
		slog.String("event", "http.listen"),
		slog.String("listen", s.http.Addr),
	)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.SetReady(false)
	logger.HTTP.Info("health server shutting down", slog.String("event", "http.stop"))
	return s.http.Shutdown(ctx)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(healthzResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Version:       buildinfo.Version,
		Commit:        buildinfo.Commit,
		BuildDate:     buildinfo.Date,
		GoVersion:     buildinfo.GoVersion(),
	})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	ready := s.ready.Load()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(readyzResponse{Ready: ready})
}
