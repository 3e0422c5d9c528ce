// Package server exposes the scan triggers and the cached dashboard over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scopehound/pkg/monitor"
)

// Scans triggers scans.
type Scans interface {
	Trigger(ctx context.Context, tenant string, override *monitor.Config) (int, error)
	Tick(ctx context.Context) (int, error)
}

// Dashboards reads cached dashboard projections.
type Dashboards interface {
	LoadDashboard(ctx context.Context, tenant string) ([]byte, error)
}

// IsNotFound checks if an error is a not found error.
type IsNotFound func(error) bool

// Config holds server configuration.
type Config struct {
	Scans      Scans
	Dashboards Dashboards
	IsNotFound IsNotFound
	Logger     *slog.Logger
	Token      string // Bearer token for the trigger endpoints; empty disables auth
}

// Server handles HTTP requests.
type Server struct {
	scans      Scans
	dashboards Dashboards
	isNotFound IsNotFound
	logger     *slog.Logger
	token      string
}

// New creates a new HTTP server handler.
func New(cfg *Config) *Server {
	return &Server{
		scans:      cfg.Scans,
		dashboards: cfg.Dashboards,
		isNotFound: cfg.IsNotFound,
		logger:     cfg.Logger,
		token:      cfg.Token,
	}
}

// Router returns the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/dashboard", s.handleDashboard)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/scan", s.handleScan)
		r.Post("/tick", s.handleTick)
	})
	return r
}

// ListenAndServe serves the router on port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Router(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute, // A scan runs inside the request
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			s.logger.Warn("Rejected trigger without valid token", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenant")
	s.logger.Info("Scan endpoint triggered", "tenant", tenant)

	n, err := s.scans.Trigger(r.Context(), tenant, nil)
	if err != nil {
		s.logger.Error("Scan failed", "tenant", tenant, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "scan interrupted"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"alertsSent": n})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Tick endpoint triggered")

	n, err := s.scans.Tick(r.Context())
	if err != nil {
		s.logger.Error("Scheduled scan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "tick failed", "alertsSent": n})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"alertsSent": n})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenant")
	data, err := s.dashboards.LoadDashboard(r.Context(), tenant)
	if err != nil {
		if s.isNotFound != nil && s.isNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dashboard yet"})
			return
		}
		s.logger.Error("Failed to load dashboard", "tenant", tenant, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dashboard unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to write dashboard response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
