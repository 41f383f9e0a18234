package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/meritboard/merit/internal/adapters/repository"
)

// RankDependencies defines the interface for rank reads.
type RankDependencies interface {
	Rank(ctx context.Context, contributor string) (repository.Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{contributor} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	contributor := strings.TrimPrefix(r.URL.Path, "/rank/")
	if contributor == "" || strings.Contains(contributor, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest, nil))
		return
	}
	entry, err := h.deps.Rank(r.Context(), contributor)
	if err != nil {
		if errors.Is(err, repository.ErrContributorNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
