// Package api declares the HTTP contracts of the replay service and wires
// them onto a chi router.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/adapters/mq/queue"
	"github.com/okian/replaystats/internal/adapters/repository"
	service "github.com/okian/replaystats/internal/app"
	"github.com/okian/replaystats/pkg/logger"
)

const (
	defaultListLimit      = 20
	defaultMaxLimit       = 100
	defaultMaxReplayBytes = 256 << 20
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Submit spools a capture and queues it for aggregation.
	Submit(ctx context.Context, r io.Reader) (queue.Job, error)

	Matches(ctx context.Context, limit int) ([]repository.Match, error)
	Match(ctx context.Context, gameID string) (repository.Match, error)
	Leaderboard(ctx context.Context, n int) ([]repository.Career, error)
	Player(ctx context.Context, username string) (repository.Career, error)
	Stats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the replay API.
type Server struct {
	deps           Dependencies
	log            logger.Logger
	maxLimit       int
	submitRate     int
	maxReplayBytes int64
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		log:            logger.Discard(),
		maxLimit:       defaultMaxLimit,
		maxReplayBytes: defaultMaxReplayBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the routes of the API.
//
//	POST /replays              queue a capture
//	GET  /matches              newest matches
//	GET  /matches/{gameID}     a match summary document
//	GET  /leaderboard          top careers by kills
//	GET  /players/{username}   one career
//	GET  /stats                service state
//	GET  /healthz              liveness
//	GET  /metrics              Prometheus exposition
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(MetricsMiddleware)

	submit := r.With()
	if s.submitRate > 0 {
		submit = r.With(httprate.Limit(s.submitRate, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
			}),
		))
	}
	submit.Post("/replays", s.handleSubmit)

	r.Get("/matches", s.handleMatches)
	r.Get("/matches/{gameID}", s.handleMatch)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/players/{username}", s.handlePlayer)
	r.Get("/stats", s.handleStats)
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metricsHandler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail translates upstream errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrUnavailable)
	default:
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal", nil)
	}
}

// limit parses the limit query parameter, defaulting to def and capped at
// the configured maximum.
func (s *Server) limit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return min(def, s.maxLimit), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.Join(ErrBadRequest, errors.New("limit must be a positive integer"))
	}
	return min(n, s.maxLimit), nil
}
