// Package api implements the bridge's HTTP API and WebSocket event stream.
//
// This package provides:
//   - REST endpoints for tracked devices, state pushes, and bridge status
//   - WebSocket hub broadcasting the event stream's add/update/delete and
//     connection events in real time
//   - Optional static bearer-token authentication
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The server is a read surface over the bridge's in-memory device models
// plus a thin command path back to the cloud service:
//
//	          HTTP clients                WebSocket clients
//	               │                             │
//	               ▼                             ▼
//	     ┌──────────────────┐          ┌──────────────────┐
//	     │  chi router       │          │  Hub (broadcast) │
//	     │  /api/v1/...      │          └────────▲─────────┘
//	     └───────┬──────────┘                    │
//	             │ reads                         │ events
//	             ▼                               │
//	      device models  ◄── event stream ───────┘
//	             │
//	             │ PUT state
//	             ▼
//	      cloud gateway
//
// Reads never touch the network; they serve the models the event stream
// maintains. PUT /devices/{id}/state pushes values to the cloud
// synchronously and returns the accepted values.
//
// # Security
//
// When api.auth_token is configured, every /api/v1 request must carry it,
// either as a bearer token in the Authorization header or, for WebSocket
// clients that cannot set headers, as a token query parameter. Tokens are
// compared in constant time. /health stays open for probes.
//
// # Graceful Degradation
//
// MQTT and InfluxDB health checkers are optional; when a component is not
// configured it is simply absent from the /health response.
package api
