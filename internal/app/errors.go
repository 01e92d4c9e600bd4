package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted      = errors.New("overlay not started")
	ErrNoTarget        = errors.New("no target")
	ErrInvalidSettings = errors.New("invalid settings")
)
