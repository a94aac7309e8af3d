package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdoc_analyses_total",
			Help: "Total number of analyze requests by outcome",
		},
		[]string{"status"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchdoc_analysis_duration_seconds",
			Help:    "End-to-end analyze duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	// Search metrics
	SearchHits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchdoc_search_hits",
			Help:    "Number of organic results returned per search",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdoc_search_requests_total",
			Help: "Search provider calls by outcome",
		},
		[]string{"status"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchdoc_search_cache_hits_total",
			Help: "Searches answered from the in-process cache",
		},
	)

	// LLM metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdoc_llm_requests_total",
			Help: "Language model calls by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchdoc_llm_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Rendering metrics
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchdoc_render_duration_seconds",
			Help:    "Answer rendering duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"format"},
	)

	// Auth metrics
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdoc_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchdoc_active_sessions",
			Help: "Sessions currently held by the in-memory store",
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdoc_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)
)

// RecordAnalysis records the outcome and duration of one analyze request.
func RecordAnalysis(status string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

func RecordSearch(status string, hits int) {
	SearchRequests.WithLabelValues(status).Inc()
	if status == "success" {
		SearchHits.Observe(float64(hits))
	}
}

func RecordLLM(provider, status string, durationSeconds float64) {
	LLMRequests.WithLabelValues(provider, status).Inc()
	LLMDuration.WithLabelValues(provider).Observe(durationSeconds)
}

func RecordRender(format string, durationSeconds float64) {
	RenderDuration.WithLabelValues(format).Observe(durationSeconds)
}

func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}
