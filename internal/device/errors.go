package device

import "errors"

// Domain errors for the device package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMalformedPayload is returned when the service payload cannot be
	// decoded into snapshots.
	ErrMalformedPayload = errors.New("device: malformed payload")
)
