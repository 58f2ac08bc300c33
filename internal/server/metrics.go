package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry
// so that tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Verdicts        *prometheus.CounterVec
	Scores          prometheus.Histogram
	Analysis        *prometheus.CounterVec
	KnowledgeCache  *prometheus.CounterVec
	Subscribers     prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soup",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "soup",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soup",
				Subsystem: "judge",
				Name:      "verdicts_total",
				Help:      "Suggested verdicts by outcome",
			},
			[]string{"verdict"},
		),
		Scores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soup",
			Subsystem: "judge",
			Name:      "guess_score",
			Help:      "Distribution of guess similarity scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		Analysis: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soup",
				Subsystem: "judge",
				Name:      "analysis_total",
				Help:      "Judging calls by operation and outcome (ok, degraded, failed)",
			},
			[]string{"op", "outcome"},
		),
		KnowledgeCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soup",
				Subsystem: "judge",
				Name:      "knowledge_cache_total",
				Help:      "Knowledge cache lookups by result",
			},
			[]string{"result"},
		),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "soup",
			Subsystem: "rooms",
			Name:      "subscribers",
			Help:      "Open room event streams",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware records per-route counts and latency. The chi route pattern
// is used as the label so that ids do not explode cardinality.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
