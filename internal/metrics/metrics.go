package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served",
		},
	)

	imageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Images sent to the storage provider, by result",
		},
		[]string{"result"},
	)

	imageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_upload_bytes",
			Help:      "Size of uploaded images in bytes",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 6),
		},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestStarted and RequestFinished track in-flight requests.
func RequestStarted()  { httpRequestsInFlight.Inc() }
func RequestFinished() { httpRequestsInFlight.Dec() }

// ObserveRequest records one served request.
func ObserveRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveUpload records one provider upload attempt.
func ObserveUpload(size int64, err error) {
	if err != nil {
		imageUploadsTotal.WithLabelValues("error").Inc()
		return
	}
	imageUploadsTotal.WithLabelValues("ok").Inc()
	imageUploadBytes.Observe(float64(size))
}

// SetBreakerState publishes the state of a named circuit breaker.
func SetBreakerState(name string, state float64) {
	circuitBreakerState.WithLabelValues(name).Set(state)
}
