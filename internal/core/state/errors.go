package state

import "errors"

// Pose contract violations. These indicate a broken upstream producer and
// are never coerced or defaulted away.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidRotation = errors.New("invalid rotation")
)
