// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meritboard/merit/internal/adapters/repository"
	"github.com/meritboard/merit/internal/domain/event"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// SeenAndRecord and Unrecord implement ingest idempotency.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes an envelope for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, e event.Envelope) bool

	// Read operations expose ranking data.
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, contributor string) (repository.Entry, error)
}

// StatsProvider exposes service statistics for the stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxLeaderboardLimit caps the leaderboard query limit.
func WithMaxLeaderboardLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.leaderboardHandler.maxLimit = n
		}
	}
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rankHandler:        NewRankHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// eventRequest mirrors the JSON schema for POST /events.
type eventRequest struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Type   string         `json:"type"`
	Time   string         `json:"time"`
	Data   map[string]any `json:"data"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(e.Source) == "":
		return errors.New("missing source")
	case strings.TrimSpace(e.Type) == "":
		return errors.New("missing type")
	}
	if !strings.Contains(e.Type, ".") {
		return errors.New("type must be dot-namespaced")
	}
	if e.Time != "" {
		if _, err := time.Parse(time.RFC3339, e.Time); err != nil {
			return errors.New("invalid time; must be RFC3339")
		}
	}
	return nil
}

// envelope converts the request into the canonical form.
func (e eventRequest) envelope() event.Envelope {
	opts := []event.Option{event.WithID(e.ID)}
	if e.Time != "" {
		if ts, err := time.Parse(time.RFC3339, e.Time); err == nil {
			opts = append(opts, event.WithTime(ts))
		}
	}
	return event.New(e.Source, e.Type, e.Data, opts...)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
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

// wrapOp annotates an error with the failing operation.
func wrapOp(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
