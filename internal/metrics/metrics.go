package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alchemorsel"

var (
	// Registry holds the application collectors plus Go runtime and process stats.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)

	llmCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "LLM provider calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	llmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Duration of LLM provider calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		},
		[]string{"provider"},
	)

	recipeValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recipes",
			Name:      "validation_failures_total",
			Help:      "Generated recipes rejected by schema validation.",
		},
		[]string{"provider"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		llmCalls,
		llmDuration,
		recipeValidationFailures,
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one handled request
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveLLMCall records one provider round trip; outcome is "ok" or "error"
func ObserveLLMCall(provider, outcome string, seconds float64) {
	llmCalls.WithLabelValues(provider, outcome).Inc()
	llmDuration.WithLabelValues(provider).Observe(seconds)
}

// RecipeValidationFailed counts a generated recipe that failed schema validation
func RecipeValidationFailed(provider string) {
	recipeValidationFailures.WithLabelValues(provider).Inc()
}
