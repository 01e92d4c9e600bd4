// Package breathing generates the rest → peak → rest oscillation of a single
// scalar channel over one loop.
package breathing

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/twinkle/internal/domain/timeline"
)

// Rest is the channel value outside the effect and after teardown.
const Rest = 0.0

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid breathing config")
)

// Generate returns a blur track that eases from Rest to amplitude over the
// first half of loop and back over the second half. The default curve is
// sine.inOut when ease is empty.
func Generate(loop, amplitude float64, ease timeline.Ease) (timeline.Timeline, error) {
	return GenerateFor(timeline.PropertyBlur, loop, amplitude, ease)
}

// GenerateFor is Generate for any property.
func GenerateFor(property timeline.Property, loop, amplitude float64, ease timeline.Ease) (timeline.Timeline, error) {
	switch {
	case math.IsNaN(loop) || math.IsInf(loop, 0) || loop <= 0:
		return timeline.Timeline{}, fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidConfig, loop)
	case math.IsNaN(amplitude) || math.IsInf(amplitude, 0) || amplitude < 0:
		return timeline.Timeline{}, fmt.Errorf("%w: amplitude must not be negative, got %v", ErrInvalidConfig, amplitude)
	}
	if ease == "" {
		ease = timeline.EaseSineInOut
	}
	if !ease.Valid() {
		return timeline.Timeline{}, fmt.Errorf("%w: unknown ease %q", ErrInvalidConfig, ease)
	}

	half := loop / 2
	return timeline.New(loop, timeline.Track{
		Property: property,
		Keyframes: []timeline.Keyframe{
			{Time: 0, Value: Rest, Ease: timeline.EaseSet},
			{Time: half, Value: amplitude, Ease: ease},
			{Time: loop, Value: Rest, Ease: ease},
		},
	})
}
