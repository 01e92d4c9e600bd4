package twinkle

import (
	"fmt"
	"math"

	"github.com/okian/twinkle/internal/domain/timeline"
)

// Visual envelope of a twinkle.
const (
	RestOpacity = 0.0
	RestScale   = 0.7
	PeakScale   = 1.3

	// boundaryEpsilon absorbs rounding when a cycle ends exactly on the loop.
	boundaryEpsilon = 1e-9
)

// Particle is a fixed point in the overlay. X and Y are percentages of the
// container; Size is the diameter in pixels.
type Particle struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
}

// Cycle is one fade-in, hold, fade-out sequence of a particle, in seconds.
type Cycle struct {
	FadeIn      float64 `json:"fade_in"`
	Hold        float64 `json:"hold"`
	FadeOut     float64 `json:"fade_out"`
	PeakOpacity float64 `json:"peak_opacity"`
	Start       float64 `json:"start"`
}

// Total is the length of the visible part of the cycle.
func (c Cycle) Total() float64 { return c.FadeIn + c.Hold + c.FadeOut }

// FadeOutStart is the time the fade-out begins.
func (c Cycle) FadeOutStart() float64 { return c.Start + c.FadeIn + c.Hold }

// Wraps reports whether the fade-out crosses the loop boundary.
func (c Cycle) Wraps(loop float64) bool { return c.FadeOutStart()+c.FadeOut > loop+boundaryEpsilon }

// WrapState is the opacity and scale at the loop boundary for a wrapping
// cycle. The split point is interpolated linearly between peak and rest.
func (c Cycle) WrapState(loop float64) (opacity, scale float64) {
	beforeWrap := loop - c.FadeOutStart()
	progress := beforeWrap / c.FadeOut
	opacity = c.PeakOpacity * (1 - progress)
	scale = PeakScale - (PeakScale-RestScale)*progress
	return opacity, scale
}

// Timeline emits the opacity and scale tracks for the cycle over loop.
// Only the fade-out may cross the boundary; it is split into a segment ending
// at loop and a segment starting at 0 that meet at the same value.
func (c Cycle) Timeline(loop float64) (timeline.Timeline, error) {
	if err := c.validate(loop); err != nil {
		return timeline.Timeline{}, err
	}

	fadeInEnd := c.Start + c.FadeIn
	fadeOutStart := c.FadeOutStart()

	if !c.Wraps(loop) {
		end := math.Min(loop, fadeOutStart+c.FadeOut)
		opacity := []timeline.Keyframe{
			{Time: 0, Value: RestOpacity, Ease: timeline.EaseSet},
			{Time: c.Start, Value: RestOpacity, Ease: timeline.EaseNone},
			{Time: fadeInEnd, Value: c.PeakOpacity, Ease: timeline.EaseSineInOut},
			{Time: fadeOutStart, Value: c.PeakOpacity, Ease: timeline.EaseNone},
			{Time: end, Value: RestOpacity, Ease: timeline.EaseSineInOut},
		}
		scale := []timeline.Keyframe{
			{Time: 0, Value: RestScale, Ease: timeline.EaseSet},
			{Time: c.Start, Value: RestScale, Ease: timeline.EaseNone},
			{Time: fadeInEnd, Value: PeakScale, Ease: timeline.EaseSineInOut},
			{Time: fadeOutStart, Value: PeakScale, Ease: timeline.EaseNone},
			{Time: end, Value: RestScale, Ease: timeline.EaseSineInOut},
		}
		return timeline.New(loop,
			timeline.Track{Property: timeline.PropertyOpacity, Keyframes: opacity},
			timeline.Track{Property: timeline.PropertyScale, Keyframes: scale},
		)
	}

	// The segment after the wrap starts at 0, so it replaces the rest baseline.
	afterWrap := c.FadeOut - (loop - fadeOutStart)
	wrapOpacity, wrapScale := c.WrapState(loop)

	opacity := []timeline.Keyframe{
		{Time: 0, Value: wrapOpacity, Ease: timeline.EaseSet},
		{Time: afterWrap, Value: RestOpacity, Ease: timeline.EaseSineInOut},
		{Time: c.Start, Value: RestOpacity, Ease: timeline.EaseNone},
		{Time: fadeInEnd, Value: c.PeakOpacity, Ease: timeline.EaseSineInOut},
		{Time: fadeOutStart, Value: c.PeakOpacity, Ease: timeline.EaseNone},
		{Time: loop, Value: wrapOpacity, Ease: timeline.EaseSineInOut},
	}
	scale := []timeline.Keyframe{
		{Time: 0, Value: wrapScale, Ease: timeline.EaseSet},
		{Time: afterWrap, Value: RestScale, Ease: timeline.EaseSineInOut},
		{Time: c.Start, Value: RestScale, Ease: timeline.EaseNone},
		{Time: fadeInEnd, Value: PeakScale, Ease: timeline.EaseSineInOut},
		{Time: fadeOutStart, Value: PeakScale, Ease: timeline.EaseNone},
		{Time: loop, Value: wrapScale, Ease: timeline.EaseSineInOut},
	}
	return timeline.New(loop,
		timeline.Track{Property: timeline.PropertyOpacity, Keyframes: opacity},
		timeline.Track{Property: timeline.PropertyScale, Keyframes: scale},
	)
}

func (c Cycle) validate(loop float64) error {
	if !positive(loop) {
		return fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidConfig, loop)
	}
	durations := []struct {
		name  string
		value float64
	}{{"fade-in", c.FadeIn}, {"hold", c.Hold}, {"fade-out", c.FadeOut}}
	for _, d := range durations {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) || d.value < 0 {
			return fmt.Errorf("%w: %s duration must be non-negative, got %v", ErrInvalidConfig, d.name, d.value)
		}
	}
	if math.IsNaN(c.PeakOpacity) || c.PeakOpacity < 0 || c.PeakOpacity > 1 {
		return fmt.Errorf("%w: peak opacity %v outside [0, 1]", ErrInvalidConfig, c.PeakOpacity)
	}
	if math.IsNaN(c.Start) || c.Start < 0 || c.Start > loop {
		return fmt.Errorf("%w: start %v outside [0, %v]", ErrCycleOverrun, c.Start, loop)
	}
	if c.Total() > loop {
		return fmt.Errorf("%w: cycle of %v exceeds loop of %v", ErrCycleOverrun, c.Total(), loop)
	}
	if c.FadeOutStart() > loop {
		return fmt.Errorf("%w: fade-out starts at %v after loop end %v", ErrCycleOverrun, c.FadeOutStart(), loop)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
