// # internal/ui/server/server.go
// Package server exposes the analysis core over HTTP for the treemap UI:
// treemap retrieval and refresh, root-confined file serving, token overlays,
// scope graphs, and per-file function metrics, plus the usual operational
// endpoints (health, prometheus metrics, the embedded OpenAPI document).
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"steward/internal/core/config"
	"steward/internal/core/errors"
	"steward/internal/core/ports"
	"steward/internal/shared/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Server struct {
	cfg     config.Server
	service ports.AnalysisService
	limiter *rate.Limiter
	spec    []byte
	server  *http.Server
}

func New(cfg config.Server, service ports.AnalysisService) (*Server, error) {
	spec, err := loadSpec()
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		service: service,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
		spec:    spec,
	}, nil
}

// Handler builds the full route table. Split out from Start so tests can
// drive it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/analysis", s.limited(s.handleAnalysis))
	mux.HandleFunc("POST /api/analysis/refresh", s.limited(s.handleRefresh))
	mux.HandleFunc("GET /api/files/content", s.handleFileContent)
	mux.HandleFunc("GET /api/overlay", s.handleOverlay)
	mux.HandleFunc("GET /api/scopegraph", s.handleScopeGraph)
	mux.HandleFunc("GET /api/functions", s.handleFunctions)
	mux.HandleFunc("GET /api/openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.instrument(mux)
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Listen)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// statusWriter captures the response code for the log line and the
// request counter.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument logs every request and feeds the prometheus counters. The
// route label uses the URL path directly; all routes are fixed paths with
// query parameters, so cardinality stays bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(started)
		observability.HTTPRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(sw.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.URL.Path).Observe(elapsed.Seconds())
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// limited applies the token bucket to scan-triggering routes. A full bucket
// refill takes seconds, so a burst of refresh clicks cannot queue up scans.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			observability.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded", codeRateLimited)
			return
		}
		next(w, r)
	}
}

const codeRateLimited = "RATE_LIMITED"

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeError maps domain error codes onto HTTP statuses. Non-domain errors
// stay opaque to the client and land in the log instead.
func writeError(w http.ResponseWriter, err error) {
	domainErr, ok := errors.From(err)
	if !ok {
		slog.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error", string(errors.CodeInternal))
		return
	}
	writeJSONError(w, statusFor(domainErr.Code), domainErr.Message, string(domainErr.Code))
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotSupported, errors.CodeParseError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
