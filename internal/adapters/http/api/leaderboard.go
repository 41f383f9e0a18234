package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/meritboard/merit/internal/adapters/repository"
)

// defaultMaxLimit caps GET /leaderboard?limit when not configured.
const defaultMaxLimit = 100

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, maxLimit: defaultMaxLimit}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest, nil))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrapOp(op, ErrBadRequest, nil))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
