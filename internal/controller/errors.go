package controller

import "errors"

// Domain-specific errors for the controller stores.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceNotFound is returned when the addressed device is not
	// in the store.
	ErrDeviceNotFound = errors.New("controller: device not found")

	// ErrUnknownInstance is returned when a multi-gang command names
	// an instance the device does not have.
	ErrUnknownInstance = errors.New("controller: unknown function instance")

	// ErrMissingFunction is returned when a device state references a
	// function its descriptor does not define.
	ErrMissingFunction = errors.New("controller: missing function definition")
)
