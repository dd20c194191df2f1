package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all bridge metrics
type Metrics struct {
	// Frame outcomes
	FramesRead    atomic.Uint64
	FacesDetected atomic.Uint64
	NoFaceFrames  atomic.Uint64

	// Error counters
	ParseErrors atomic.Uint64
	ReadErrors  atomic.Uint64

	// Latency tracking
	DetectLatencyMs atomic.Uint64 // Last detect() round trip in ms

	// Recording state
	RecordingActive atomic.Uint64 // 0 = inactive, 1 = active
	RecordedFrames  atomic.Uint64

	// Prometheus collectors
	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.registerPrometheusMetrics()

	return m
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_frames_read_total",
			Help: "Total frames read from the worker stream",
		},
		func() float64 { return float64(m.FramesRead.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_faces_detected_total",
			Help: "Total frames with a detected face",
		},
		func() float64 { return float64(m.FacesDetected.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_no_face_frames_total",
			Help: "Total frames where the worker reported no face",
		},
		func() float64 { return float64(m.NoFaceFrames.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_parse_errors_total",
			Help: "Total worker lines that failed to decode",
		},
		func() float64 { return float64(m.ParseErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_read_errors_total",
			Help: "Total worker stream read failures",
		},
		func() float64 { return float64(m.ReadErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_detect_latency_ms",
			Help: "Last detect round trip in milliseconds",
		},
		func() float64 { return float64(m.DetectLatencyMs.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_recording_active",
			Help: "Recording active (0=inactive, 1=active)",
		},
		func() float64 { return float64(m.RecordingActive.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "facebridge_recorded_frames_total",
			Help: "Total landmark frames written to the recorder",
		},
		func() float64 { return float64(m.RecordedFrames.Load()) },
	))
}

// UpdateDetectLatency updates the last detect round trip duration
func (m *Metrics) UpdateDetectLatency(duration time.Duration) {
	m.DetectLatencyMs.Store(uint64(duration.Milliseconds()))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
