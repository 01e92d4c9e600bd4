package twinkle

import (
	"fmt"
	"math"

	"github.com/okian/twinkle/internal/domain/timeline"
)

// Draw ranges, in seconds unless noted.
const (
	positionMargin = 5.0 // percent of each axis
	positionSpan   = 100 - 2*positionMargin

	fadeMin     = 2.0
	fadeSpan    = 1.0
	peakMin     = 0.5
	peakSpan    = 0.3
	holdMin     = 0.2
	holdSpan    = 0.6
	jitterSpan  = 0.3 // centred on zero
	cycleBudget = 0.9 // share of the loop a cycle may occupy
)

// ParticleTimeline is a particle with its cycle and the keyframes that play it.
type ParticleTimeline struct {
	Particle Particle          `json:"particle"`
	Cycle    Cycle             `json:"cycle"`
	Timeline timeline.Timeline `json:"timeline"`
	Wrapped  bool              `json:"wrapped"`
}

// Schedule generates count particles of the given size with twinkle cycles
// that fit in loop seconds. Every particle keeps idle time each loop, phases
// are spread evenly around the loop, and any fade-out crossing the boundary is
// split so playback is continuous when the loop repeats.
//
// Random draws happen per particle in this order: x, y, fade-in, fade-out,
// peak opacity, hold, start jitter.
func Schedule(count int, loop, size float64, opts ...Option) ([]ParticleTimeline, error) {
	if err := validate(count, loop, size); err != nil {
		return nil, err
	}
	o := newOptions(opts...)

	out := make([]ParticleTimeline, 0, count)
	for i := 0; i < count; i++ {
		p := Particle{
			Index: i,
			X:     positionMargin + o.source.Float64()*positionSpan,
			Y:     positionMargin + o.source.Float64()*positionSpan,
			Size:  size,
		}

		c := drawCycle(o.source, loop)
		start := PhaseOffset(i, count, loop) + (o.source.Float64()-0.5)*jitterSpan
		c.Start = math.Max(0, math.Min(loop-c.Total(), start))

		tl, err := c.Timeline(loop)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
		out = append(out, ParticleTimeline{
			Particle: p,
			Cycle:    c,
			Timeline: tl,
			Wrapped:  c.Wraps(loop),
		})
	}
	return out, nil
}

// PhaseOffset is the evenly spaced base start of particle index out of count.
func PhaseOffset(index, count int, loop float64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Mod(float64(index)*(loop/float64(count)), loop)
}

// Fit scales the durations down proportionally when their sum exceeds the
// share of loop a cycle may occupy.
func Fit(fadeIn, hold, fadeOut, loop float64) (float64, float64, float64) {
	total := fadeIn + hold + fadeOut
	limit := cycleBudget * loop
	if total > limit {
		k := limit / total
		return fadeIn * k, hold * k, fadeOut * k
	}
	return fadeIn, hold, fadeOut
}

// MaxCycle is the longest cycle allowed in loop.
func MaxCycle(loop float64) float64 { return cycleBudget * loop }

func drawCycle(src Source, loop float64) Cycle {
	fadeIn := fadeMin + src.Float64()*fadeSpan
	fadeOut := fadeMin + src.Float64()*fadeSpan
	peak := peakMin + src.Float64()*peakSpan
	hold := holdMin + src.Float64()*holdSpan

	fadeIn, hold, fadeOut = Fit(fadeIn, hold, fadeOut, loop)
	return Cycle{
		FadeIn:      fadeIn,
		Hold:        hold,
		FadeOut:     fadeOut,
		PeakOpacity: peak,
	}
}

func validate(count int, loop, size float64) error {
	switch {
	case count < 0:
		return fmt.Errorf("%w: particle count must not be negative, got %d", ErrInvalidConfig, count)
	case !positive(loop):
		return fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidConfig, loop)
	case !positive(size):
		return fmt.Errorf("%w: particle size must be positive, got %v", ErrInvalidConfig, size)
	}
	return nil
}
