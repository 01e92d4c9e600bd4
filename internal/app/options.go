package service

import (
	"time"

	"github.com/okian/twinkle/internal/adapters/player"
	"github.com/okian/twinkle/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSink sets where sampled frames are written.
func WithSink(sink player.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithClock sets the clock shared by every player.
func WithClock(c player.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSettings sets the initial overlay settings.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithBlurTarget names the element the breathing effect animates. An empty
// name disables the effect.
func WithBlurTarget(target string) Option {
	return func(s *Service) {
		s.blurTarget = target
	}
}

// WithSeed fixes the random source; 0 seeds from the clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithFrameInterval sets the player tick period.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithPlacer sets who learns star positions before playback. Sinks that
// implement Placer are used automatically.
func WithPlacer(p Placer) Option {
	return func(s *Service) {
		if p != nil {
			s.placer = p
		}
	}
}
