package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/mode"
)

// Controller is the part of the application the state endpoint drives.
type Controller interface {
	State() app.State
	Update(ctx context.Context, u app.StateUpdate) (app.State, error)
	IsEnabled() bool
	SetEnabled(enabled bool)
	Running() bool
	Active() bool
	Hub() *app.Hub
}

// StateHandler serves GET and PUT /api/state.
type StateHandler struct {
	app Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(a Controller) *StateHandler {
	return &StateHandler{app: a}
}

type stateResponse struct {
	app.State
	Tracking  bool          `json:"tracking"`
	Running   bool          `json:"running"`
	Active    bool          `json:"active"`
	Available []mode.Name   `json:"modes"`
	Snapshot  *app.Snapshot `json:"snapshot,omitempty"`
}

type updateStateRequest struct {
	app.StateUpdate
	Tracking *bool `json:"tracking,omitempty"`
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StateHandler) response() stateResponse {
	resp := stateResponse{
		State:     h.app.State(),
		Tracking:  h.app.IsEnabled(),
		Running:   h.app.Running(),
		Active:    h.app.Active(),
		Available: mode.Names(),
	}
	if snap, ok := h.app.Hub().Latest(); ok {
		resp.Snapshot = &snap
	}
	return resp
}

// get handles GET /api/state.
func (h *StateHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response())
}

// update handles PUT /api/state. Only the fields present are changed.
func (h *StateHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if _, err := h.app.Update(r.Context(), req.StateUpdate); err != nil {
		if errors.Is(err, mode.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save state")
		return
	}
	if req.Tracking != nil {
		h.app.SetEnabled(*req.Tracking)
	}

	writeJSON(w, http.StatusOK, h.response())
}
