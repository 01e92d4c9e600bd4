// Package scene holds the immutable product of one overlay configuration.
package scene

import (
	"strconv"
	"strings"

	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/okian/twinkle/internal/domain/twinkle"
)

// starPrefix prefixes particle target names.
const starPrefix = "star-"

// Scene is every timeline generated for one configuration. It is never
// mutated; a reconfiguration produces a new Scene.
type Scene struct {
	Generation string                     `json:"generation"`
	Loop       float64                    `json:"loop"`
	StarSize   float64                    `json:"star_size"`
	Stars      []twinkle.ParticleTimeline `json:"stars"`
	BlurTarget string                     `json:"blur_target,omitempty"`
	Breathing  *timeline.Timeline         `json:"breathing,omitempty"`
}

// StarTarget names the render target of particle index i.
func StarTarget(i int) string { return starPrefix + strconv.Itoa(i) }

// StarIndex parses a target produced by StarTarget.
func StarIndex(target string) (int, bool) {
	rest, ok := strings.CutPrefix(target, starPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Targets lists every render target in the scene, stars first.
func (s Scene) Targets() []string {
	out := make([]string, 0, len(s.Stars)+1)
	for _, st := range s.Stars {
		out = append(out, StarTarget(st.Particle.Index))
	}
	if s.Breathing != nil && s.BlurTarget != "" {
		out = append(out, s.BlurTarget)
	}
	return out
}

// Sample evaluates every target at t seconds.
func (s Scene) Sample(t float64) map[string]map[timeline.Property]float64 {
	out := make(map[string]map[timeline.Property]float64, len(s.Stars)+1)
	for _, st := range s.Stars {
		out[StarTarget(st.Particle.Index)] = st.Timeline.Sample(t)
	}
	if s.Breathing != nil && s.BlurTarget != "" {
		out[s.BlurTarget] = s.Breathing.Sample(t)
	}
	return out
}

// WrappedCount is the number of stars whose fade-out was split at the boundary.
func (s Scene) WrappedCount() int {
	n := 0
	for _, st := range s.Stars {
		if st.Wrapped {
			n++
		}
	}
	return n
}

// Empty reports whether the scene has nothing to play.
func (s Scene) Empty() bool { return len(s.Stars) == 0 && s.Breathing == nil }
