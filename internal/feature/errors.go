package feature

import "errors"

// Domain errors for feature conversion.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEmptyList is returned when a percentage lookup is attempted
	// against an empty ordered list.
	ErrEmptyList = errors.New("feature: ordered list is empty")

	// ErrUnknownItem is returned when a value is not present in its
	// declared ordered list.
	ErrUnknownItem = errors.New("feature: item not in ordered list")

	// ErrInvalidRange is returned when a function range definition is
	// missing or malformed.
	ErrInvalidRange = errors.New("feature: invalid range definition")
)
