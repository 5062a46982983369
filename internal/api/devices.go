package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
)

// handleListDevices returns the tracked device models.
//
// Query parameters:
//   - category: filter by category (light, fan, switch, lock, valve, device)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	category := device.Category(r.URL.Query().Get("category"))

	resources := s.devices.Resources(category)
	if resources == nil {
		resources = []event.Resource{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": resources,
		"count":   len(resources),
	})
}

// handleGetDevice returns a single tracked device model by id.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, ok := s.devices.Resource(id)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// StateRequest is the body for PUT /api/v1/devices/{id}/state. Each value
// is a raw functionClass/value pair in the service's own vocabulary;
// lastUpdateTime is stamped by the server.
type StateRequest struct {
	Values []device.State `json:"values"`
}

// handleSetDeviceState pushes state values to a device.
//
// The push is synchronous: the response carries the values the cloud
// service accepted, already folded into the tracked model. Subscribers
// see the change as an update event without waiting for the next poll.
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := s.devices.Resource(id); !ok {
		writeNotFound(w, "device not found")
		return
	}

	var req StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Values) == 0 {
		writeBadRequest(w, "values field is required")
		return
	}

	ts := time.Now().Unix()
	for i := range req.Values {
		if req.Values[i].FunctionClass == "" {
			writeBadRequest(w, "functionClass is required on every value")
			return
		}
		req.Values[i].LastUpdateTime = ts
	}

	accepted, err := s.commander.SendCommand(r.Context(), id, req.Values)
	if err != nil {
		s.logger.Warn("device command failed", "device_id", id, "error", err)
		writeUpstreamError(w, "state push failed")
		return
	}

	s.logger.Info("device command accepted", "device_id", id, "values", len(req.Values))

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"accepted":  accepted,
	})
}
