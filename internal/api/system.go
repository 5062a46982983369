package api

import (
	"net/http"
	"time"
)

// handleHealth reports liveness of the bridge and its attached services.
//
// The overall status is "ok" while every configured component passes its
// health check and "degraded" otherwise. Components that are not
// configured are omitted from the response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	components := make(map[string]string)

	check := func(name string, hc HealthChecker) {
		if hc == nil {
			return
		}
		if err := hc.HealthCheck(r.Context()); err != nil {
			components[name] = err.Error()
			status = "degraded"
			return
		}
		components[name] = "ok"
	}
	check("mqtt", s.mqttHealth)
	check("influxdb", s.influxHealth)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"upstream":       s.stream.Status(),
		"components":     components,
	})
}

// handleStatus returns the event stream's runtime statistics.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	emitted, dropped := s.stream.EventCounters()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                s.stream.Status(),
		"poll_interval_seconds": int(s.stream.PollInterval().Seconds()),
		"queue_depth":           s.stream.QueueDepth(),
		"tracked_devices":       len(s.stream.TrackedDevices()),
		"events": map[string]any{
			"emitted": emitted,
			"dropped": dropped,
		},
		"websocket_clients": s.hub.ClientCount(),
	})
}
