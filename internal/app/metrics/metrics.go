// Package metrics exposes the forum's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "forum",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forum",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	questionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "questions",
			Name:      "created_total",
			Help:      "Total number of questions created.",
		},
	)

	answersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "answers",
			Name:      "created_total",
			Help:      "Total number of answers created.",
		},
	)

	votesCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "votes",
			Name:      "cast_total",
			Help:      "Total number of vote toggles applied.",
		},
		[]string{"entity", "direction", "action"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		questionsCreated,
		answersCreated,
		votesCast,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight tracks the start of an HTTP request.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight tracks the end of an HTTP request.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuestionCreated counts a successfully created question.
func RecordQuestionCreated() { questionsCreated.Inc() }

// RecordAnswerCreated counts a successfully created answer.
func RecordAnswerCreated() { answersCreated.Inc() }

// RecordVote counts a vote toggle on a question or answer.
func RecordVote(entity, direction, action string) {
	votesCast.WithLabelValues(entity, direction, action).Inc()
}
