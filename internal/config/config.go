// Package config defines overlay configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and TWINKLE_* env vars.
// - Validation errors wrap ErrInvalidConfig; loader errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Renderer names.
const (
	RendererTerminal = "terminal"
	RendererHeadless = "headless"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// LogFile receives logs. Empty means stdout for headless runs and no
	// logging for terminal runs, which own the screen.
	LogFile string `koanf:"log_file"`

	// StarCount is the number of twinkling particles.
	StarCount int `koanf:"star_count"`

	// StarSize is the particle diameter in pixels.
	StarSize float64 `koanf:"star_size"`

	// LoopDuration is the loop period in seconds.
	LoopDuration float64 `koanf:"loop_duration"`

	// BlurAmount is the breathing blur peak in pixels.
	BlurAmount float64 `koanf:"blur_amount"`

	// AutoStart starts the breathing effect immediately.
	AutoStart bool `koanf:"auto_start"`

	// BlurTarget names the element the breathing effect animates. Empty
	// disables the effect.
	BlurTarget string `koanf:"blur_target"`

	// FPS is the playback frame rate.
	FPS int `koanf:"fps"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// Renderer selects the host surface: terminal or headless.
	Renderer string `koanf:"renderer"`

	// HTTPAddr enables the debug API when set, e.g. ":9090".
	HTTPAddr string `koanf:"http_addr"`

	// RunFor stops the overlay after this long; 0 runs until interrupted.
	RunFor time.Duration `koanf:"run_for"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		StarCount:    25,
		StarSize:     2,
		LoopDuration: 7,
		BlurAmount:   4,
		AutoStart:    true,
		BlurTarget:   "backdrop",
		FPS:          30,
		Renderer:     RendererTerminal,
	}
}

// FrameInterval is the playback tick derived from FPS.
func (c *Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FPS)
}

// Validate checks the configuration for values the overlay cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.StarCount < 0:
		return fmt.Errorf("%w: star_count must not be negative, got %d", ErrInvalidConfig, c.StarCount)
	case !finitePositive(c.StarSize):
		return fmt.Errorf("%w: star_size must be positive, got %v", ErrInvalidConfig, c.StarSize)
	case !finitePositive(c.LoopDuration):
		return fmt.Errorf("%w: loop_duration must be positive, got %v", ErrInvalidConfig, c.LoopDuration)
	case math.IsNaN(c.BlurAmount) || c.BlurAmount < 0:
		return fmt.Errorf("%w: blur_amount must not be negative, got %v", ErrInvalidConfig, c.BlurAmount)
	case c.FPS <= 0 || c.FPS > 240:
		return fmt.Errorf("%w: fps must be in (0, 240], got %d", ErrInvalidConfig, c.FPS)
	case c.RunFor < 0:
		return fmt.Errorf("%w: run_for must not be negative, got %s", ErrInvalidConfig, c.RunFor)
	}

	switch strings.ToLower(c.Renderer) {
	case RendererTerminal, RendererHeadless:
	default:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, c.Renderer)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
