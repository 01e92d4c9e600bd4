// Package terminal renders the overlay onto a tcell screen.
package terminal

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/okian/twinkle/pkg/logger"
)

const (
	defaultFrameInterval = time.Second / 30

	// maxHazeBlur is the blur, in pixels, at which the haze is strongest.
	maxHazeBlur = 8.0
	maxHazeMix  = 0.45
)

// Glyphs by apparent diameter, smallest first.
var glyphs = []struct {
	below float64
	r     rune
}{
	{1.5, '·'},
	{2.5, '•'},
	{3.5, '✦'},
	{math.Inf(1), '★'},
}

type star struct {
	x, y, size float64
	opacity    float64
	scale      float64
}

// Renderer is a player sink that draws stars over a gradient backdrop.
type Renderer struct {
	screen   tcell.Screen
	interval time.Duration
	logger   logger.Logger

	top, bottom colorful.Color
	star        colorful.Color
	haze        colorful.Color

	mu    sync.Mutex
	stars map[string]*star
	blur  map[string]float64
}

// OpenScreen creates and initializes the terminal screen.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// New creates a renderer drawing to screen.
func New(screen tcell.Screen, opts ...Option) *Renderer {
	r := &Renderer{
		screen:   screen,
		interval: defaultFrameInterval,
		top:      colorful.Color{R: 0.02, G: 0.03, B: 0.12},
		bottom:   colorful.Color{R: 0.10, G: 0.05, B: 0.22},
		star:     colorful.Color{R: 1, G: 0.97, B: 0.86},
		haze:     colorful.Color{R: 0.35, G: 0.33, B: 0.50},
		stars:    make(map[string]*star),
		blur:     make(map[string]float64),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("terminal")
	}
	return r
}

// Place positions target at x, y percent of the screen with a diameter in
// pixels. Targets that are never placed are not drawn as stars.
func (r *Renderer) Place(target string, x, y, size float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stars[target]
	if !ok {
		s = &star{scale: 1}
		r.stars[target] = s
	}
	s.x, s.y, s.size = x, y, size
}

// SetProperty implements the player sink.
func (r *Renderer) SetProperty(target string, property timeline.Property, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch property {
	case timeline.PropertyBlur:
		r.blur[target] = value
	case timeline.PropertyOpacity:
		if s, ok := r.stars[target]; ok {
			s.opacity = value
		}
	case timeline.PropertyScale:
		if s, ok := r.stars[target]; ok {
			s.scale = value
		}
	}
}

// Clear forgets target.
func (r *Renderer) Clear(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stars, target)
	delete(r.blur, target)
}

// Draw paints one frame and shows it.
func (r *Renderer) Draw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	mix := r.hazeMixLocked()

	rows := make([]colorful.Color, h)
	for y := range rows {
		rows[y] = r.backgroundAt(y, h, mix)
		style := tcell.StyleDefault.Background(toTcell(rows[y]))
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	for _, s := range r.stars {
		if s.opacity <= 0 {
			continue
		}
		cx, cy := cell(s.x, w), cell(s.y, h)
		bg := rows[cy]
		fg := bg.BlendRgb(r.star, math.Min(1, s.opacity))
		style := tcell.StyleDefault.Background(toTcell(bg)).Foreground(toTcell(fg))
		r.screen.SetContent(cx, cy, glyph(s.size*s.scale), nil, style)
	}

	r.screen.Show()
}

// Run redraws every frame interval and handles terminal events until ctx is
// canceled or the user presses Esc or Ctrl-C.
func (r *Renderer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					r.logger.Info(ctx, "quit requested")
					return nil
				}
			case *tcell.EventResize:
				r.screen.Sync()
				r.Draw()
			}
		case <-ticker.C:
			r.Draw()
		}
	}
}

func (r *Renderer) hazeMixLocked() float64 {
	peak := 0.0
	for _, v := range r.blur {
		peak = math.Max(peak, v)
	}
	return math.Min(1, peak/maxHazeBlur) * maxHazeMix
}

func (r *Renderer) backgroundAt(y, h int, mix float64) colorful.Color {
	t := 0.0
	if h > 1 {
		t = float64(y) / float64(h-1)
	}
	return r.top.BlendLab(r.bottom, t).Clamped().BlendRgb(r.haze, mix)
}

// cell maps a percentage onto a cell index in [0, n).
func cell(pct float64, n int) int {
	i := int(math.Round(pct / 100 * float64(n-1)))
	return max(0, min(n-1, i))
}

func glyph(diameter float64) rune {
	for _, g := range glyphs {
		if diameter < g.below {
			return g.r
		}
	}
	return glyphs[len(glyphs)-1].r
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
