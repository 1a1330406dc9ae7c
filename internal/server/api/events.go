package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// Limits for GET /api/events.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// EventHandler serves the action log.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates an EventHandler backed by s.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

type listEventsResponse struct {
	Events []store.ActionEvent `json:"events"`
	Counts map[string]int      `json:"counts"`
}

// ServeHTTP handles GET /api/events?limit=N, newest first.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.store.Events().Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	counts, err := h.store.Events().CountByKind(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	resp := listEventsResponse{Events: events, Counts: counts}
	if resp.Events == nil {
		resp.Events = []store.ActionEvent{}
	}
	writeJSON(w, http.StatusOK, resp)
}
