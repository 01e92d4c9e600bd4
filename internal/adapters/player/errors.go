package player

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotStarted     = errors.New("player not started")
	ErrInvalidBinding = errors.New("invalid binding")
)
