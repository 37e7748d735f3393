package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware instruments plain http handlers with request count,
// duration and in-flight metrics labeled by handler name.
type Middleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

func New(registry prometheus.Registerer, buckets []float64) *Middleware {
	if buckets == nil {
		buckets = prometheus.ExponentialBuckets(0.001, 2, 12)
	}

	factory := promauto.With(registry)
	return &Middleware{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Tracks the number of HTTP requests.",
		}, []string{"method", "code", "handler"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests.",
			Buckets: buckets,
		}, []string{"method", "code", "handler"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Tracks the number of HTTP requests being served.",
		}, []string{"handler"}),
	}
}

func (m *Middleware) WrapHandler(handlerName string, handler http.Handler) http.HandlerFunc {
	labels := prometheus.Labels{"handler": handlerName}
	wrapped := promhttp.InstrumentHandlerInFlight(
		m.inFlight.With(labels),
		promhttp.InstrumentHandlerDuration(
			m.duration.MustCurryWith(labels),
			promhttp.InstrumentHandlerCounter(
				m.requests.MustCurryWith(labels),
				handler,
			),
		),
	)
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r)
	}
}
