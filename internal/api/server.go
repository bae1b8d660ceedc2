// Package api serves the spending network over HTTP.
//
// The surface is small and read-only:
//   - GET /api/network: aggregated payment graph, filtered by query params
//   - GET /api/stats: store-wide summary counts
//   - GET /api/health: liveness probe
//
// Every response is JSON. Errors use a structured envelope with a
// machine-readable code, and every request carries a UUID request ID for
// log correlation.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/store"
)

// Query parameter defaults and limits.
const (
	DefaultMinAmount = 10000.0
	DefaultMaxEdges  = 80
	MaxEdgesCeiling  = 500

	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server serves the payment graph API.
type Server struct {
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by st. A nil logger falls back to log.Default().
func New(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Get("/api/network", s.handleNetwork)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/health", s.handleHealth)
	s.router = r

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("API listening", "addr", addr)

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "serve %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleNetwork serves the aggregated payment graph.
func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	minAmount, err := floatParam(r, "min_amount", DefaultMinAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	maxEdges, err := intParam(r, "max_edges", DefaultMaxEdges)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if maxEdges < 1 || maxEdges > MaxEdgesCeiling {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "max_edges must be between 1 and %d", MaxEdgesCeiling))
		return
	}
	if minAmount < 0 {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "min_amount must not be negative"))
		return
	}

	payload, err := s.store.Network(r.Context(), minAmount, maxEdges)
	if err != nil {
		s.logger.Error("network aggregation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleStats serves the store-wide summary.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats aggregation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, raw)
	}
	return v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, raw)
	}
	return v, nil
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
