// Package metrics exposes Prometheus instrumentation for the frame pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry uses reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithFrameBuckets sets the histogram buckets, in seconds, for frame timing.
func WithFrameBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.frameBuckets = buckets
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtime = true
	}
}

// Manager owns the registry and every collector. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace    string
	registry     *prometheus.Registry
	frameBuckets []float64
	runtime      bool

	framesProcessed prometheus.Counter
	framesDropped   *prometheus.CounterVec
	frameDuration   prometheus.Histogram
	trackedHands    prometheus.Gauge
	gestures        *prometheus.CounterVec
	swipes          *prometheus.CounterVec
	actions         *prometheus.CounterVec
	actionFailures  *prometheus.CounterVec
	modeSwitches    *prometheus.CounterVec
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "mudra",
		frameBuckets: []float64{.002, .005, .01, .02, .033, .05, .1, .25},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "frames_processed_total",
		Help:      "Frames that reached the landmark detector.",
	})
	m.framesDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "frames_dropped_total",
		Help:      "Frames skipped before classification, by reason.",
	}, []string{"reason"})
	m.frameDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "frame_processing_seconds",
		Help:      "Time from capture to dispatched actions for one frame.",
		Buckets:   m.frameBuckets,
	})
	m.trackedHands = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "tracked_hands",
		Help:      "Hands with a live tracking session.",
	})
	m.gestures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "gestures_total",
		Help:      "Classified gestures, by hand and gesture.",
	}, []string{"hand", "gesture"})
	m.swipes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "swipes_total",
		Help:      "Detected swipes, by direction.",
	}, []string{"direction"})
	m.actions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "actions_total",
		Help:      "Actions applied to the input sink, by kind.",
	}, []string{"kind"})
	m.actionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "action_failures_total",
		Help:      "Actions the input sink rejected, by kind.",
	}, []string{"kind"})
	m.modeSwitches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "mode_switches_total",
		Help:      "Mode changes, by target mode.",
	}, []string{"mode"})

	return m
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// FrameProcessed records one detected frame and its processing time.
func (m *Manager) FrameProcessed(seconds float64) {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
	m.frameDuration.Observe(seconds)
}

// FrameDropped records a frame skipped for reason.
func (m *Manager) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

// SetTrackedHands sets the live session count.
func (m *Manager) SetTrackedHands(n int) {
	if m == nil {
		return
	}
	m.trackedHands.Set(float64(n))
}

// GestureObserved counts one classified gesture.
func (m *Manager) GestureObserved(hand, gesture string) {
	if m == nil {
		return
	}
	m.gestures.WithLabelValues(hand, gesture).Inc()
}

// SwipeObserved counts one swipe.
func (m *Manager) SwipeObserved(direction string) {
	if m == nil {
		return
	}
	m.swipes.WithLabelValues(direction).Inc()
}

// ActionExecuted counts one applied action.
func (m *Manager) ActionExecuted(kind string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind).Inc()
}

// ActionFailed counts one rejected action.
func (m *Manager) ActionFailed(kind string) {
	if m == nil {
		return
	}
	m.actionFailures.WithLabelValues(kind).Inc()
}

// ModeSwitched counts a change to mode.
func (m *Manager) ModeSwitched(mode string) {
	if m == nil {
		return
	}
	m.modeSwitches.WithLabelValues(mode).Inc()
}
