package device

import "errors"

var (
	// ErrDeviceNotFound is returned when no seat exists for the identifier.
	ErrDeviceNotFound = errors.New("device not found")
)
