package timeline

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidTimeline = errors.New("invalid timeline")
)
