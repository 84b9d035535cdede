package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	intents        *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	retrieved      *prometheus.HistogramVec
	markers        *prometheus.CounterVec
	turnDuration   *prometheus.HistogramVec
	truncatedTurns prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_chat_intents_total",
			Help: "Chat turns by classified intent.",
		}, []string{"intent"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_chat_fallbacks_total",
			Help: "Classifier and extractor calls that fell back to their safe default.",
		}, []string{"step"}),
		retrieved: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_chat_retrieved_books",
			Help:    "Candidate set size per retrieval path.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20},
		}, []string{"path"}),
		markers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_chat_markers_total",
			Help: "BID markers seen in generated answers, by resolution.",
		}, []string{"result"}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_chat_turn_duration_seconds",
			Help:    "Wall time of a chat turn.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		}, []string{"transport"}),
		truncatedTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_chat_truncated_turns_total",
			Help: "Turns whose answer stream ended early.",
		}),
	}

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m.registry.MustRegister(m.intents, m.fallbacks, m.retrieved, m.markers, m.turnDuration, m.truncatedTurns)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for Prometheus metrics scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) Intent(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

func (m *Metrics) Fallback(step string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(step).Inc()
}

func (m *Metrics) Retrieved(path string, n int) {
	if m == nil {
		return
	}
	m.retrieved.WithLabelValues(path).Observe(float64(n))
}

func (m *Metrics) Markers(resolved, unresolved int) {
	if m == nil {
		return
	}
	m.markers.WithLabelValues("resolved").Add(float64(resolved))
	m.markers.WithLabelValues("unresolved").Add(float64(unresolved))
}

func (m *Metrics) Turn(transport string, d time.Duration, truncated bool) {
	if m == nil {
		return
	}
	m.turnDuration.WithLabelValues(transport).Observe(d.Seconds())
	if truncated {
		m.truncatedTurns.Inc()
	}
}
