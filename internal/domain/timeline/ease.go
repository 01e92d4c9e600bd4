package timeline

import "math"

// Ease shapes the progress of a segment between two keyframes.
type Ease string

// Supported easing curves.
const (
	// EaseSet jumps to the keyframe value at the keyframe time.
	EaseSet Ease = "set"
	// EaseNone interpolates linearly.
	EaseNone Ease = "none"
	// EaseSineInOut starts and ends slowly.
	EaseSineInOut Ease = "sine.inOut"
)

// Apply maps linear progress p in [0,1] through the curve. Values outside the
// range are clamped. Unknown curves fall back to linear.
func (e Ease) Apply(p float64) float64 {
	if p >= 1 {
		return 1
	}
	if p <= 0 {
		return 0
	}

	switch e {
	case EaseSet:
		// the target value only applies once the keyframe time is reached
		return 0
	case EaseSineInOut:
		return -(math.Cos(math.Pi*p) - 1) / 2
	default:
		return p
	}
}

// Valid reports whether e is a known curve.
func (e Ease) Valid() bool {
	switch e {
	case EaseSet, EaseNone, EaseSineInOut:
		return true
	}
	return false
}
