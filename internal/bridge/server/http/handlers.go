package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

// Handler exposes the mower over a small REST surface. Commands are
// fire-and-forget like the underlying protocol; a 202 only means the
// command was published.
type Handler struct {
	logger log.Logger
	coord  *mower.Coordinator
}

func NewHandler(coord *mower.Coordinator, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Handler{logger: logger.WithName("api"), coord: coord}
}

// Register mounts the API routes on the given router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/status", h.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/refresh", h.postRefresh).Methods(http.MethodPost)
	r.HandleFunc("/start", h.command(mower.Start)).Methods(http.MethodPost)
	r.HandleFunc("/pause", h.command(mower.Pause)).Methods(http.MethodPost)
	r.HandleFunc("/dock", h.command(mower.Dock)).Methods(http.MethodPost)
	r.HandleFunc("/edge-cut", h.command(mower.EdgeCut)).Methods(http.MethodPost)
	r.HandleFunc("/rain-delay", h.postRainDelay).Methods(http.MethodPost)
	r.HandleFunc("/schedule", h.postSchedule).Methods(http.MethodPost)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.coord.Cache().Snapshot()
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := map[string]any{
		"device_id": h.coord.DeviceID(),
		"activity":  snapshot.Activity(),
		"connected": h.coord.Connected(),
		"status":    snapshot,
	}
	if model, version, ok := h.coord.Cache().Identity(); ok {
		response["model"] = model
		response["sw_version"] = version
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) postRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.coord.Refresh(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"activity": snapshot.Activity(),
		"status":   snapshot,
	})
}

func (h *Handler) command(build func() mower.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := build()
		if err := h.coord.SendCommand(r.Context(), cmd); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, map[string]any{"command": cmd.Name()})
	}
}

func (h *Handler) postRainDelay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled      bool `json:"enabled"`
		DelayMinutes int  `json:"delay_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.DelayMinutes < 0 {
		http.Error(w, "delay_minutes must not be negative", http.StatusBadRequest)
		return
	}

	cmd := mower.SetRainDelay(body.Enabled, body.DelayMinutes)
	if err := h.coord.SendCommand(r.Context(), cmd); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]any{"command": cmd.Name()})
}

func (h *Handler) postSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Auto  bool                         `json:"auto"`
		Pause bool                         `json:"pause"`
		Days  map[string]mower.DaySchedule `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd, err := mower.SetSchedule(body.Auto, body.Pause, body.Days)
	if err != nil {
		// Malformed slots fail the whole command before anything is sent.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.coord.SendCommand(r.Context(), cmd); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]any{"command": cmd.Name()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("Failed to write response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgmqtt.ErrNotConnected):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, mower.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, mower.ErrRefreshTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, mower.ErrRefreshInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
