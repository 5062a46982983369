package hubspace

import "errors"

// Domain-specific errors for the bridge facade.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBridgeClosed is returned when a closed bridge is asked to
	// initialize again.
	ErrBridgeClosed = errors.New("hubspace: bridge closed")
)
