package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline stage metrics
	StageExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_stage_executions_total",
			Help: "Total number of specialist stage executions",
		},
		[]string{"stage", "status"}, // status: success|degraded
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_stage_duration_seconds",
			Help:    "Specialist stage execution duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"stage"},
	)

	// Model invocation metrics
	ModelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_model_calls_total",
			Help: "Total number of model capability calls",
		},
		[]string{"provider", "status"}, // status: success|error|parameter_error
	)

	ModelTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_model_tokens_total",
			Help: "Total tokens consumed by model calls",
		},
		[]string{"provider", "type"}, // type: input|output
	)

	// Web search metrics
	SearchCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_search_calls_total",
			Help: "Total number of web search tool calls",
		},
		[]string{"status"}, // status: success|rate_limited|provider_error|error|empty
	)

	// HTTP boundary metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 120, 300},
		},
		[]string{"endpoint"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(StageExecutions)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(ModelCalls)
	prometheus.MustRegister(ModelTokens)
	prometheus.MustRegister(SearchCalls)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStage records a specialist stage execution
func RecordStage(stage string, duration time.Duration, degraded bool) {
	status := "success"
	if degraded {
		status = "degraded"
	}

	StageExecutions.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
