package twinkle

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid twinkle config")
	ErrCycleOverrun  = errors.New("twinkle cycle overruns loop")
)
