// Package memory provides a headless sink that keeps the last value written
// for every target and property.
package memory

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/okian/twinkle/internal/domain/timeline"
)

// Sink is safe for concurrent use by several players.
type Sink struct {
	mu     sync.RWMutex
	values map[string]map[timeline.Property]float64
	writes atomic.Int64
}

// New creates an empty sink.
func New() *Sink {
	return &Sink{values: make(map[string]map[timeline.Property]float64)}
}

// SetProperty stores value for target.
func (s *Sink) SetProperty(target string, property timeline.Property, value float64) {
	s.mu.Lock()
	props, ok := s.values[target]
	if !ok {
		props = make(map[timeline.Property]float64, 2)
		s.values[target] = props
	}
	props[property] = value
	s.mu.Unlock()
	s.writes.Add(1)
}

// Get returns the last value written for target and property.
func (s *Sink) Get(target string, property timeline.Property) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[target][property]
	return v, ok
}

// Properties returns a copy of every value held for target.
func (s *Sink) Properties(target string) map[timeline.Property]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	props, ok := s.values[target]
	if !ok {
		return nil
	}
	out := make(map[timeline.Property]float64, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// Targets lists the targets currently holding values, sorted.
func (s *Sink) Targets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.values))
	for t := range s.values {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clear drops every value held for target.
func (s *Sink) Clear(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, target)
}

// Writes is the number of SetProperty calls so far.
func (s *Sink) Writes() int64 { return s.writes.Load() }
