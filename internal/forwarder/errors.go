package forwarder

import "errors"

// Domain-specific errors for MQTT command handling.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidTopic is returned when a command arrives on a topic
	// the forwarder cannot parse a device id from.
	ErrInvalidTopic = errors.New("forwarder: invalid command topic")

	// ErrInvalidCommand is returned when a command payload is not
	// valid JSON or names no function class.
	ErrInvalidCommand = errors.New("forwarder: invalid command")

	// ErrUnknownDevice is returned when a command targets a device the
	// engine does not track.
	ErrUnknownDevice = errors.New("forwarder: unknown device")
)
