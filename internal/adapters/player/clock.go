package player

import (
	"sync"
	"time"
)

// Clock is the time source that drives playback.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers frame ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock reads the wall clock with its monotonic reading.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// NewTicker wraps time.NewTicker.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// MockClock is a controllable clock for tests. Tickers fire only when the
// clock is advanced past their next deadline.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*mockTicker
}

// NewMockClock creates a mock clock starting at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

// Now returns the current mocked time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// NewTicker returns a ticker driven by Advance and Set.
func (m *MockClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("player: non-positive ticker interval")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTicker{clock: m, period: d, next: m.now.Add(d), ch: make(chan time.Time, 1)}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the clock forward by d and fires due tickers.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.fireLocked()
}

// Set moves the clock to t and fires due tickers.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
	m.fireLocked()
}

// Tickers is the number of live tickers.
func (m *MockClock) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

func (m *MockClock) fireLocked() {
	for _, t := range m.tickers {
		for !t.next.After(m.now) {
			// ticks coalesce like time.Ticker when the reader lags
			select {
			case t.ch <- m.now:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

func (m *MockClock) remove(t *mockTicker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.tickers {
		if cur == t {
			m.tickers = append(m.tickers[:i], m.tickers[i+1:]...)
			return
		}
	}
}

type mockTicker struct {
	clock  *MockClock
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }
func (t *mockTicker) Stop()               { t.clock.remove(t) }
