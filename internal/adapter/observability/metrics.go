package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of answer evaluations by source (rubric or local)",
		},
		[]string{"source"},
	)
	RubricFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rubric_fallbacks_total",
			Help: "Times the remote rubric failed and the local path was used",
		},
	)

	// Score distributions, all on the 0-100 scale.
	RelevanceScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_relevance_score",
			Help:    "Distribution of relevance scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	ConfidenceScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_confidence_score",
			Help:    "Distribution of confidence scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	FinalScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_final_score",
			Help:    "Distribution of final blended scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ReportRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_repairs_total",
			Help: "Structural repairs applied by the report normalizer",
		},
		[]string{"section", "repair"},
	)
	ReportsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Reports generated by kind and mode (remote or offline)",
		},
		[]string{"kind", "mode"},
	)

	TranscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptions_total",
			Help: "Audio transcriptions by outcome",
		},
		[]string{"outcome"},
	)
)

// InitMetrics registers all Prometheus metrics once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(RubricFallbacksTotal)
	prometheus.MustRegister(RelevanceScoreHistogram)
	prometheus.MustRegister(ConfidenceScoreHistogram)
	prometheus.MustRegister(FinalScoreHistogram)
	prometheus.MustRegister(ReportRepairsTotal)
	prometheus.MustRegister(ReportsGeneratedTotal)
	prometheus.MustRegister(TranscriptionsTotal)
}

// ObserveEvaluation records score distributions for one finished record.
func ObserveEvaluation(source string, relevance, confidence, final float64) {
	EvaluationsTotal.WithLabelValues(source).Inc()
	RelevanceScoreHistogram.Observe(relevance)
	ConfidenceScoreHistogram.Observe(confidence)
	FinalScoreHistogram.Observe(final)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}
