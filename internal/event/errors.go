package event

import "errors"

// Domain-specific errors for the event stream.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAlreadyRunning is returned when Start is called on a running
	// stream.
	ErrAlreadyRunning = errors.New("event: stream already running")

	// ErrStopped is returned when Start is called on a stream that
	// has been stopped; a stopped stream cannot be restarted.
	ErrStopped = errors.New("event: stream stopped")
)
