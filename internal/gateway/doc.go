// Package gateway is the HTTP client for the Hubspace cloud service.
//
// This package manages:
//   - The OAuth2/PKCE login flow against the identity provider
//   - Access token caching and refresh
//   - Full-fleet metadevice fetches
//   - State updates pushed back to the service
//   - The service's retry discipline for rate limiting
//
// # Architecture
//
//	Authenticator ── tokens ──▶ Client ── HTTP ──▶ Afero cloud
//	                              │
//	                              ▼
//	                        device.DecodeSnapshots
//
// The account and data planes live behind one CDN that routes on the
// Host header, so requests carry per-plane host overrides.
//
// # Error Taxonomy
//
// Errors callers branch on are sentinels: ErrTransient covers rate
// limits, outages and network faults (keep polling); ErrInvalidAuth is
// terminal until credentials change; ErrInvalidResponse flags payloads
// the client cannot use. ErrExceededRetries wraps ErrTransient.
//
// # Usage
//
//	client := gateway.NewClient(username, password, nil)
//	snaps, err := client.FetchSnapshots(ctx)
//	if errors.Is(err, gateway.ErrTransient) {
//	    // service unreachable, try again next interval
//	}
package gateway
