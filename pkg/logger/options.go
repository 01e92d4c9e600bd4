package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Option applies a configuration option to Init.
type Option func(*settings)

type settings struct {
	writer io.Writer
	format string
	level  slog.Level
	source bool
}

// WithWriter sends log output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithFormat selects "text" (default) or "json" output.
func WithFormat(format string) Option {
	return func(s *settings) {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			s.format = "json"
		case "text", "":
			s.format = "text"
		}
	}
}

// WithLevel sets the initial level.
func WithLevel(level slog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithHandlerSource adds slog's own source attribute to every record.
func WithHandlerSource(enabled bool) Option {
	return func(s *settings) {
		s.source = enabled
	}
}
