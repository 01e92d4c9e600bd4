package player

import (
	"time"

	"github.com/okian/twinkle/pkg/logger"
)

// Option configures a Player.
type Option func(*Player)

// RepeatForever plays until stopped.
const RepeatForever = -1

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(p *Player) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithFrameInterval sets the tick period between frames.
func WithFrameInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithRepeat sets how many times the loop repeats after the first pass.
// RepeatForever (-1) never finishes.
func WithRepeat(n int) Option {
	return func(p *Player) {
		if n >= RepeatForever {
			p.repeat = n
		}
	}
}

// WithPaused starts each Play paused at loop time 0.
func WithPaused(paused bool) Option {
	return func(p *Player) {
		p.startPaused = paused
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithName sets the player name used in logs and metrics.
func WithName(name string) Option {
	return func(p *Player) {
		if name != "" {
			p.name = name
		}
	}
}
