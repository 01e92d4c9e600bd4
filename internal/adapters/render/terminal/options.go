package terminal

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/okian/twinkle/pkg/logger"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithFrameInterval sets the redraw period of Run.
func WithFrameInterval(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBackdrop sets the top and bottom colours of the backdrop gradient.
func WithBackdrop(top, bottom colorful.Color) Option {
	return func(r *Renderer) {
		r.top, r.bottom = top, bottom
	}
}

// WithStarColor sets the colour of a star at full opacity.
func WithStarColor(c colorful.Color) Option {
	return func(r *Renderer) {
		r.star = c
	}
}

// WithHazeColor sets the colour the backdrop blends toward as blur grows.
func WithHazeColor(c colorful.Color) Option {
	return func(r *Renderer) {
		r.haze = c
	}
}
