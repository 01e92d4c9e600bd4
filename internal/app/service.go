// Package service runs the ambient overlay: it generates a scene from the
// settings and plays it against a sink, rebuilding on reconfiguration.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/twinkle/internal/adapters/player"
	"github.com/okian/twinkle/internal/adapters/render/memory"
	"github.com/okian/twinkle/internal/domain/breathing"
	"github.com/okian/twinkle/internal/domain/scene"
	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/okian/twinkle/internal/domain/twinkle"
	"github.com/okian/twinkle/pkg/logger"
	"github.com/okian/twinkle/pkg/metrics"
)

// Reconfiguration outcomes reported to metrics.
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
)

// Settings are the user-facing knobs of the overlay.
type Settings struct {
	StarCount    int     `json:"star_count"`
	StarSize     float64 `json:"star_size"`
	LoopDuration float64 `json:"loop_duration"`
	BlurAmount   float64 `json:"blur_amount"`
	AutoStart    bool    `json:"auto_start"`
}

// DefaultSettings are 25 stars of 2px on a 7s loop with a 4px breath.
func DefaultSettings() Settings {
	return Settings{
		StarCount:    25,
		StarSize:     2,
		LoopDuration: 7,
		BlurAmount:   4,
		AutoStart:    true,
	}
}

// Validate rejects settings no scene can be generated from.
func (s Settings) Validate() error {
	switch {
	case s.StarCount < 0:
		return fmt.Errorf("%w: star count must not be negative, got %d", ErrInvalidSettings, s.StarCount)
	case !(s.StarSize > 0) || math.IsInf(s.StarSize, 0):
		return fmt.Errorf("%w: star size must be positive, got %v", ErrInvalidSettings, s.StarSize)
	case !(s.LoopDuration > 0) || math.IsInf(s.LoopDuration, 0):
		return fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidSettings, s.LoopDuration)
	case !(s.BlurAmount >= 0) || math.IsInf(s.BlurAmount, 0):
		return fmt.Errorf("%w: blur amount must not be negative, got %v", ErrInvalidSettings, s.BlurAmount)
	}
	return nil
}

// Placer learns where each star sits before playback begins.
type Placer interface {
	Place(target string, x, y, size float64)
}

// Stats describe the live overlay.
type Stats struct {
	Started          bool          `json:"started"`
	Generation       string        `json:"generation,omitempty"`
	Stars            int           `json:"stars"`
	Wrapped          int           `json:"wrapped"`
	Breathing        bool          `json:"breathing"`
	BreathingPaused  bool          `json:"breathing_paused"`
	Reconfigurations int           `json:"reconfigurations"`
	Rejected         int           `json:"rejected"`
	MissingTarget    int           `json:"missing_target"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Service owns the current scene and its players.
type Service struct {
	mu sync.RWMutex

	// Configuration
	sink          player.Sink
	placer        Placer
	clock         player.Clock
	settings      Settings
	blurTarget    string
	seed          int64
	frameInterval time.Duration
	source        twinkle.Source

	// State
	started  bool
	runCtx   context.Context //nolint:containedctx // players outlive the Start call
	current  *scene.Scene
	stars    *player.Player
	breath   *player.Player
	applied  int
	rejected int
	noTarget int

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:         player.SystemClock{},
		settings:      DefaultSettings(),
		blurTarget:    "backdrop",
		frameInterval: time.Second / 30,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sink == nil {
		s.sink = memory.New()
	}
	if s.placer == nil {
		if p, ok := s.sink.(Placer); ok {
			s.placer = p
		}
	}
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.source = rand.New(rand.NewSource(seed)) //nolint:gosec // visual randomness only
	return s
}

// Start generates the first scene and starts playback. The players run until
// ctx is canceled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("overlay")
	}

	s.logger.Info(ctx, "starting overlay...")

	sc, err := s.generate(ctx, s.settings)
	if err != nil {
		return err
	}
	s.runCtx = ctx
	if err := s.play(sc, s.settings); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "overlay started",
		logger.String("generation", sc.Generation),
		logger.Int("stars", len(sc.Stars)),
		logger.Float64("loop", sc.Loop),
		logger.Bool("breathing", sc.Breathing != nil),
	)
	return nil
}

// Reconfigure generates a scene from settings and, only when that succeeds,
// tears down the running scene and plays the new one. On error the previous
// scene keeps playing.
func (s *Service) Reconfigure(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	sc, err := s.generate(ctx, settings)
	if err != nil {
		s.rejected++
		metrics.RecordReconfiguration(outcomeRejected)
		s.logger.Error(ctx, "reconfiguration rejected, keeping current scene",
			logger.String("generation", s.current.Generation),
			logger.Error(err),
		)
		return err
	}

	previous := s.current.Generation
	s.teardown()
	if err := s.play(sc, settings); err != nil {
		s.current = nil
		s.started = false
		return err
	}
	s.settings = settings
	s.applied++
	metrics.RecordReconfiguration(outcomeApplied)
	s.logger.Info(ctx, "overlay reconfigured",
		logger.String("previous", previous),
		logger.String("generation", sc.Generation),
		logger.Int("stars", len(sc.Stars)),
	)
	return nil
}

// Preview generates a scene from settings without playing it.
func (s *Service) Preview(ctx context.Context, settings Settings) (scene.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		s.logger = logger.Get().Named("overlay")
	}
	return s.generate(ctx, settings)
}

// Stop tears down playback and restores the blur target to rest. Stop is
// idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping overlay...")
	s.teardown()
	s.current = nil
	s.started = false
	s.logger.Info(context.Background(), "overlay stopped")
}

// Pause freezes every player.
func (s *Service) Pause() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players() {
		p.Pause()
	}
}

// Resume continues every player, including a breathing effect that was
// created paused.
func (s *Service) Resume() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players() {
		p.Resume()
	}
}

// Snapshot returns the scene currently playing.
func (s *Service) Snapshot() (scene.Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return scene.Scene{}, false
	}
	return *s.current, true
}

// Settings returns the settings of the scene currently playing.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:          s.started,
		Reconfigurations: s.applied,
		Rejected:         s.rejected,
		MissingTarget:    s.noTarget,
	}
	if s.current != nil {
		st.Generation = s.current.Generation
		st.Stars = len(s.current.Stars)
		st.Wrapped = s.current.WrappedCount()
	}
	if s.stars != nil {
		st.Elapsed = s.stars.Elapsed()
	}
	if s.breath != nil {
		st.Breathing = true
		st.BreathingPaused = s.breath.Paused()
		if s.stars == nil {
			st.Elapsed = s.breath.Elapsed()
		}
	}
	return st
}

// generate builds a scene without touching playback.
func (s *Service) generate(ctx context.Context, settings Settings) (scene.Scene, error) {
	if err := settings.Validate(); err != nil {
		metrics.RecordGenerationError(metrics.KindTwinkle, "invalid_settings")
		return scene.Scene{}, err
	}

	start := time.Now()
	stars, err := twinkle.Schedule(settings.StarCount, settings.LoopDuration, settings.StarSize, twinkle.WithSource(s.source))
	if err != nil {
		metrics.RecordGenerationError(metrics.KindTwinkle, reason(err))
		return scene.Scene{}, fmt.Errorf("schedule stars: %w", err)
	}
	metrics.RecordGeneration(metrics.KindTwinkle, msSince(start))

	sc := scene.Scene{
		Generation: uuid.NewString(),
		Loop:       settings.LoopDuration,
		StarSize:   settings.StarSize,
		Stars:      stars,
	}

	if s.blurTarget == "" {
		s.noTarget++
		metrics.RecordGenerationError(metrics.KindBreathing, "no_target")
		s.logger.Warn(ctx, "breathing effect skipped", logger.Error(ErrNoTarget))
		return sc, nil
	}

	start = time.Now()
	blur, err := breathing.Generate(settings.LoopDuration, settings.BlurAmount, timeline.EaseSineInOut)
	if err != nil {
		metrics.RecordGenerationError(metrics.KindBreathing, reason(err))
		return scene.Scene{}, fmt.Errorf("generate breathing: %w", err)
	}
	metrics.RecordGeneration(metrics.KindBreathing, msSince(start))

	sc.BlurTarget = s.blurTarget
	sc.Breathing = &blur
	return sc, nil
}

// play starts players for sc. Callers hold s.mu.
func (s *Service) play(sc scene.Scene, settings Settings) error {
	opts := []player.Option{
		player.WithClock(s.clock),
		player.WithFrameInterval(s.frameInterval),
		player.WithLogger(s.logger),
	}

	if len(sc.Stars) > 0 {
		bindings := make([]player.Binding, len(sc.Stars))
		for i, st := range sc.Stars {
			target := scene.StarTarget(st.Particle.Index)
			if s.placer != nil {
				s.placer.Place(target, st.Particle.X, st.Particle.Y, st.Particle.Size)
			}
			bindings[i] = player.Binding{Target: target, Timeline: st.Timeline}
		}
		stars := player.New(s.sink, append(opts, player.WithName("stars"))...)
		if err := stars.Play(s.runCtx, bindings); err != nil {
			return fmt.Errorf("play stars: %w", err)
		}
		s.stars = stars
	}

	if sc.Breathing != nil {
		breath := player.New(s.sink, append(opts,
			player.WithName("breathing"),
			player.WithPaused(!settings.AutoStart),
		)...)
		if err := breath.Play(s.runCtx, []player.Binding{{Target: sc.BlurTarget, Timeline: *sc.Breathing}}); err != nil {
			if s.stars != nil {
				s.stars.Stop()
				s.stars = nil
			}
			return fmt.Errorf("play breathing: %w", err)
		}
		s.breath = breath
	}

	metrics.UpdateParticles(len(sc.Stars))
	metrics.RecordWrapSplits(sc.WrappedCount())
	s.current = &sc
	return nil
}

// teardown stops every player and returns the blur target to rest. Callers
// hold s.mu.
func (s *Service) teardown() {
	for _, p := range s.players() {
		p.Stop()
	}
	if s.current != nil && s.current.Breathing != nil {
		s.sink.SetProperty(s.current.BlurTarget, timeline.PropertyBlur, breathing.Rest)
	}
	s.stars, s.breath = nil, nil
	metrics.UpdateParticles(0)
}

func (s *Service) players() []*player.Player {
	out := make([]*player.Player, 0, 2)
	if s.stars != nil {
		out = append(out, s.stars)
	}
	if s.breath != nil {
		out = append(out, s.breath)
	}
	return out
}

func reason(err error) string {
	switch {
	case errors.Is(err, twinkle.ErrCycleOverrun):
		return "cycle_overrun"
	case errors.Is(err, twinkle.ErrInvalidConfig), errors.Is(err, breathing.ErrInvalidConfig):
		return "invalid_config"
	default:
		return "unknown"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
