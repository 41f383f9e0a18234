package api

import (
	"encoding/json"
	"net/http"
)

// EventsHandler handles envelope ingest requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest, err))
		return
	}

	// Idempotency first: a duplicate id is acknowledged, not reprocessed.
	if h.deps.SeenAndRecord(r.Context(), req.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.envelope()); !ok {
		// Roll back the seen mark so the envelope can be retried.
		h.deps.Unrecord(r.Context(), req.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapOp(op, ErrBackpressure, nil))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
