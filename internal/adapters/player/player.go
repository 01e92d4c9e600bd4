// Package player drives keyframe timelines against a rendering sink on a loop.
package player

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/okian/twinkle/pkg/logger"
	"github.com/okian/twinkle/pkg/metrics"
)

const defaultFrameInterval = time.Second / 30

// Sink receives sampled property values.
type Sink interface {
	SetProperty(target string, property timeline.Property, value float64)
}

// Clearer is implemented by sinks that can drop a target on teardown.
type Clearer interface {
	Clear(target string)
}

// Binding attaches a timeline to a render target.
type Binding struct {
	Target   string
	Timeline timeline.Timeline
}

// Player applies sampled frames of its bindings to a sink. One Player runs at
// most one loop goroutine; Play replaces the previous run.
type Player struct {
	sink        Sink
	clock       Clock
	interval    time.Duration
	repeat      int
	startPaused bool
	name        string
	logger      logger.Logger

	mu        sync.Mutex
	bindings  []Binding
	loop      float64
	running   bool
	paused    bool
	offset    time.Duration
	resumedAt time.Time
	stop      chan struct{}
	done      chan struct{}
}

// New creates a player writing to sink.
func New(sink Sink, opts ...Option) *Player {
	p := &Player{
		sink:     sink,
		clock:    SystemClock{},
		interval: defaultFrameInterval,
		repeat:   RepeatForever,
		name:     "player",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("player")
	}
	if p.name != "player" {
		p.logger = p.logger.Named(p.name)
	}
	return p
}

// Name identifies the player in logs and metrics.
func (p *Player) Name() string { return p.name }

// Play applies the frame at loop time 0 and starts the loop goroutine. A
// previous run is stopped first. The loop ends when ctx is canceled, Stop is
// called, or the configured repeats are exhausted.
func (p *Player) Play(ctx context.Context, bindings []Binding) error {
	if len(bindings) == 0 {
		return fmt.Errorf("%w: no bindings", ErrInvalidBinding)
	}
	loop := 0.0
	for i, b := range bindings {
		if b.Target == "" {
			return fmt.Errorf("%w: binding %d has no target", ErrInvalidBinding, i)
		}
		if err := b.Timeline.Validate(); err != nil {
			return fmt.Errorf("%w: target %s: %w", ErrInvalidBinding, b.Target, err)
		}
		loop = math.Max(loop, b.Timeline.Loop)
	}

	p.Stop()

	p.mu.Lock()
	p.bindings = append([]Binding(nil), bindings...)
	p.loop = loop
	p.running = true
	p.paused = p.startPaused
	p.offset = 0
	p.resumedAt = p.clock.Now()
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.applyLocked(0)
	stop, done := p.stop, p.done
	ticker := p.clock.NewTicker(p.interval)
	p.mu.Unlock()

	metrics.AddActivePlayers(1)
	p.logger.Debug(ctx, "playback started",
		logger.Int("bindings", len(bindings)),
		logger.Float64("loop", loop),
		logger.Bool("paused", p.startPaused),
	)

	go p.run(ctx, ticker, stop, done)
	return nil
}

func (p *Player) run(ctx context.Context, ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.finish(ctx, stop, "context canceled")
			return
		case <-stop:
			return
		case <-ticker.C():
			if finished := p.tick(stop); finished {
				p.finish(ctx, stop, "repeats exhausted")
				return
			}
		}
	}
}

// tick renders one frame of the run owning stop and reports whether the run
// has played all of its repeats.
func (p *Player) tick(stop chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.stop != stop || p.paused {
		return false
	}
	elapsed := p.elapsedLocked()
	if p.repeat != RepeatForever {
		if limit := p.loop * float64(p.repeat+1); elapsed.Seconds() >= limit {
			// loops are seamless, so the end frame equals loop time 0
			p.applyLocked(0)
			return true
		}
	}
	p.applyLocked(elapsed.Seconds())
	return false
}

// finish marks the run owning stop as ended without clearing targets.
func (p *Player) finish(ctx context.Context, stop chan struct{}, reason string) {
	p.mu.Lock()
	if !p.running || p.stop != stop {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.offset = p.elapsedLocked()
	p.paused = true
	p.mu.Unlock()

	metrics.AddActivePlayers(-1)
	p.logger.Debug(ctx, "playback ended", logger.String("reason", reason))
}

// Render applies one frame at the current clock time.
func (p *Player) Render() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindings == nil {
		return ErrNotStarted
	}
	p.applyLocked(p.elapsedLocked().Seconds())
	return nil
}

// Seek moves playback to t seconds and applies that frame. Paused players stay
// paused at t.
func (p *Player) Seek(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: seek to %v", ErrInvalidBinding, t)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindings == nil {
		return ErrNotStarted
	}
	p.offset = time.Duration(t * float64(time.Second))
	p.resumedAt = p.clock.Now()
	p.applyLocked(t)
	return nil
}

// Pause freezes playback at the current time.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.offset = p.elapsedLocked()
	p.paused = true
}

// Resume continues playback from where it was paused.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused || !p.running {
		return
	}
	p.resumedAt = p.clock.Now()
	p.paused = false
}

// Stop ends playback and clears the bound targets when the sink supports it.
// No frame is applied after Stop returns. Stop is idempotent.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.stop == nil {
		p.mu.Unlock()
		return
	}
	wasRunning := p.running
	stop, done := p.stop, p.done
	bindings := p.bindings
	p.running = false
	p.stop, p.done = nil, nil
	p.bindings = nil
	p.mu.Unlock()

	close(stop)
	<-done

	if wasRunning {
		metrics.AddActivePlayers(-1)
	}
	if c, ok := p.sink.(Clearer); ok {
		for _, b := range bindings {
			c.Clear(b.Target)
		}
	}
}

// Elapsed is the playback time including every repeat.
func (p *Player) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsedLocked()
}

// Running reports whether the loop goroutine is live.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Paused reports whether playback is frozen.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) elapsedLocked() time.Duration {
	if p.paused {
		return p.offset
	}
	return p.offset + p.clock.Now().Sub(p.resumedAt)
}

func (p *Player) applyLocked(t float64) {
	start := time.Now()
	for _, b := range p.bindings {
		for prop, v := range b.Timeline.Sample(t) {
			p.sink.SetProperty(b.Target, prop, v)
		}
	}
	metrics.RecordPlayerFrame(p.name, float64(time.Since(start).Microseconds())/1000)
}
