// Package timeline models seekable, repeating timelines of keyframed scalar
// properties.
//
// A keyframe states the value a property reaches at a point in the loop and
// the curve used to approach it from the previous keyframe. Sampling is done
// modulo the loop duration, so a timeline repeats forever without extra state.
package timeline

import (
	"fmt"
	"math"
	"sort"
)

// Property names a scalar channel on a render target.
type Property string

// Known properties.
const (
	PropertyOpacity Property = "opacity"
	PropertyScale   Property = "scale"
	PropertyBlur    Property = "blur"
)

// Keyframe is the value a property reaches at Time, approached with Ease.
type Keyframe struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
	Ease  Ease    `json:"ease"`
}

// Track is the ordered keyframe sequence of a single property.
type Track struct {
	Property  Property   `json:"property"`
	Keyframes []Keyframe `json:"keyframes"`
}

// Timeline is a set of tracks sharing one loop duration (seconds).
type Timeline struct {
	Loop   float64 `json:"loop"`
	Tracks []Track `json:"tracks"`
}

// New builds a timeline and validates it.
func New(loop float64, tracks ...Track) (Timeline, error) {
	tl := Timeline{Loop: loop, Tracks: tracks}
	if err := tl.Validate(); err != nil {
		return Timeline{}, err
	}
	return tl, nil
}

// Validate checks the loop duration and keyframe ordering of every track.
func (tl Timeline) Validate() error {
	if math.IsNaN(tl.Loop) || math.IsInf(tl.Loop, 0) || tl.Loop <= 0 {
		return fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidTimeline, tl.Loop)
	}
	for _, tr := range tl.Tracks {
		if err := tr.validate(tl.Loop); err != nil {
			return err
		}
	}
	return nil
}

func (tr Track) validate(loop float64) error {
	if len(tr.Keyframes) == 0 {
		return fmt.Errorf("%w: track %q has no keyframes", ErrInvalidTimeline, tr.Property)
	}
	prev := math.Inf(-1)
	for i, kf := range tr.Keyframes {
		if kf.Time < 0 || kf.Time > loop {
			return fmt.Errorf("%w: track %q keyframe %d at %v outside [0, %v]", ErrInvalidTimeline, tr.Property, i, kf.Time, loop)
		}
		if kf.Time < prev {
			return fmt.Errorf("%w: track %q keyframe %d out of order", ErrInvalidTimeline, tr.Property, i)
		}
		if !kf.Ease.Valid() {
			return fmt.Errorf("%w: track %q keyframe %d has unknown ease %q", ErrInvalidTimeline, tr.Property, i, kf.Ease)
		}
		prev = kf.Time
	}
	return nil
}

// Track returns the track for property p.
func (tl Timeline) Track(p Property) (Track, bool) {
	for _, tr := range tl.Tracks {
		if tr.Property == p {
			return tr, true
		}
	}
	return Track{}, false
}

// Normalize maps t into [0, Loop).
func (tl Timeline) Normalize(t float64) float64 {
	if tl.Loop <= 0 {
		return 0
	}
	t = math.Mod(t, tl.Loop)
	if t < 0 {
		t += tl.Loop
	}
	return t
}

// Sample evaluates every track at t seconds, taken modulo the loop.
func (tl Timeline) Sample(t float64) map[Property]float64 {
	t = tl.Normalize(t)
	out := make(map[Property]float64, len(tl.Tracks))
	for _, tr := range tl.Tracks {
		out[tr.Property] = tr.At(t)
	}
	return out
}

// At evaluates the track at t (already inside the loop). Before the first
// keyframe the first value holds; after the last keyframe the last value holds.
func (tr Track) At(t float64) float64 {
	kfs := tr.Keyframes
	if len(kfs) == 0 {
		return 0
	}

	// index of the first keyframe strictly after t
	next := sort.Search(len(kfs), func(i int) bool { return kfs[i].Time > t })
	if next == 0 {
		return kfs[0].Value
	}
	if next == len(kfs) {
		return kfs[len(kfs)-1].Value
	}

	from, to := kfs[next-1], kfs[next]
	span := to.Time - from.Time
	if span <= 0 {
		return to.Value
	}
	p := to.Ease.Apply((t - from.Time) / span)
	return from.Value + (to.Value-from.Value)*p
}

// Duration is the time of the last keyframe.
func (tr Track) Duration() float64 {
	if len(tr.Keyframes) == 0 {
		return 0
	}
	return tr.Keyframes[len(tr.Keyframes)-1].Time
}
