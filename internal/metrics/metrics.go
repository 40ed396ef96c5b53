// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the service counters: HTTP traffic plus booking
// outcomes.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
	bookingsCreated prometheus.Counter
	bookingConflict prometheus.Counter
}

// NewCollector registers the service metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directorio_http_requests_total",
			Help: "HTTP responses by method and status code",
		}, []string{"method", "status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "directorio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "directorio_citas_creadas_total",
			Help: "Appointments committed",
		}),
		bookingConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "directorio_citas_conflicto_total",
			Help: "Booking attempts rejected because the slot was taken",
		}),
	}

	reg.MustRegister(c.httpRequests, c.requestDuration, c.bookingsCreated, c.bookingConflict)
	return c
}

func (c *Collector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordBookingCreated() { c.bookingsCreated.Inc() }

func (c *Collector) RecordBookingConflict() { c.bookingConflict.Inc() }

// Handler returns the Prometheus scrape handler for /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
