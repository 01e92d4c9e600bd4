// Package metrics provides Prometheus metrics for the twinkle overlay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation kinds used as label values.
const (
	KindTwinkle   = "twinkle"
	KindBreathing = "breathing"
)

// Manager manages all Prometheus metrics for the overlay.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	enabled        bool
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Generation Metrics - scheduler output
	generations       *prometheus.CounterVec
	generationErrors  *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	particles         prometheus.Gauge
	wrapSplits        prometheus.Counter
	reconfigurations  *prometheus.CounterVec

	// Playback Metrics - timeline player loop
	playerFrames       *prometheus.CounterVec
	playerFrameLatency prometheus.Histogram
	playersActive      prometheus.Gauge

	// HTTP Metrics - debug API
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "twinkle",
		subsystem:      "overlay",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:        true,
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generations_total",
		Help:        "Total number of timeline generations by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.generationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generation_errors_total",
		Help:        "Total number of rejected generations by kind and reason",
		ConstLabels: labels,
	}, []string{"kind", "reason"})

	m.generationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generation_latency_milliseconds",
		Help:        "Time spent generating timelines in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"kind"})

	m.particles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "particles",
		Help:        "Number of particles in the live scene",
		ConstLabels: labels,
	})

	m.wrapSplits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "wrap_splits_total",
		Help:        "Total number of fade-outs split at the loop boundary",
		ConstLabels: labels,
	})

	m.reconfigurations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reconfigurations_total",
		Help:        "Total number of reconfigurations by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.playerFrames = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "player_frames_total",
		Help:        "Total number of frames applied by player",
		ConstLabels: labels,
	}, []string{"player"})

	m.playerFrameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "player_frame_latency_milliseconds",
		Help:        "Time spent sampling and applying one frame in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})

	m.playersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_active",
		Help:        "Number of running timeline players",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of debug API requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Debug API request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// RecordGeneration counts a successful generation and its latency.
func (m *Manager) RecordGeneration(kind string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.generations.WithLabelValues(kind).Inc()
	m.generationLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordGenerationError counts a rejected generation.
func (m *Manager) RecordGenerationError(kind, reason string) {
	if !m.enabled {
		return
	}
	m.generationErrors.WithLabelValues(kind, reason).Inc()
}

// UpdateParticles sets the live particle count.
func (m *Manager) UpdateParticles(count int) {
	if !m.enabled {
		return
	}
	m.particles.Set(float64(count))
}

// RecordWrapSplits adds n boundary splits.
func (m *Manager) RecordWrapSplits(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.wrapSplits.Add(float64(n))
}

// RecordReconfiguration counts a reconfiguration attempt.
func (m *Manager) RecordReconfiguration(outcome string) {
	if !m.enabled {
		return
	}
	m.reconfigurations.WithLabelValues(outcome).Inc()
}

// RecordPlayerFrame counts one applied frame and its latency.
func (m *Manager) RecordPlayerFrame(player string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.playerFrames.WithLabelValues(player).Inc()
	m.playerFrameLatency.Observe(latencyMs)
}

// AddActivePlayers adjusts the running player gauge by delta.
func (m *Manager) AddActivePlayers(delta int) {
	if !m.enabled {
		return
	}
	m.playersActive.Add(float64(delta))
}

// RecordHTTPRequest records one debug API request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystem sets memory and goroutine gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGeneration records on the global manager.
func RecordGeneration(kind string, latencyMs float64) {
	globalManager.RecordGeneration(kind, latencyMs)
}

// RecordGenerationError records on the global manager.
func RecordGenerationError(kind, reason string) { globalManager.RecordGenerationError(kind, reason) }

// UpdateParticles records on the global manager.
func UpdateParticles(count int) { globalManager.UpdateParticles(count) }

// RecordWrapSplits records on the global manager.
func RecordWrapSplits(n int) { globalManager.RecordWrapSplits(n) }

// RecordReconfiguration records on the global manager.
func RecordReconfiguration(outcome string) { globalManager.RecordReconfiguration(outcome) }

// RecordPlayerFrame records on the global manager.
func RecordPlayerFrame(player string, latencyMs float64) {
	globalManager.RecordPlayerFrame(player, latencyMs)
}

// AddActivePlayers records on the global manager.
func AddActivePlayers(delta int) { globalManager.AddActivePlayers(delta) }

// RecordHTTPRequest records on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// UpdateSystem records on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
