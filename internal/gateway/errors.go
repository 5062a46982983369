package gateway

import (
	"errors"
	"fmt"
)

// Domain-specific errors for cloud API operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTransient is returned (or wrapped) when a request failed for a
	// reason expected to clear on its own: rate limiting, service
	// unavailability or a network fault. Callers keep polling.
	ErrTransient = errors.New("gateway: transient service failure")

	// ErrExceededRetries is returned when every retry attempt was
	// consumed by rate-limit or unavailable responses. It wraps
	// ErrTransient, so errors.Is(err, ErrTransient) matches it.
	ErrExceededRetries = fmt.Errorf("%w: exceeded maximum retries", ErrTransient)

	// ErrInvalidAuth is returned when the service rejects the
	// credentials or the session. Retrying without new credentials
	// will not help.
	ErrInvalidAuth = errors.New("gateway: invalid authentication")

	// ErrInvalidResponse is returned when the service answers with a
	// payload the client cannot use.
	ErrInvalidResponse = errors.New("gateway: invalid response")

	// ErrNotFound is returned when the requested resource does not
	// exist on the account.
	ErrNotFound = errors.New("gateway: resource not found")
)
