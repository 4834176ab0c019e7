package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"northline/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "northline"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Bookings accepted and stored.",
	})

	bookingsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_deleted_total",
		Help:      "Bookings removed by id.",
	})

	bookingsCleared = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_cleared_total",
		Help:      "Bulk clears of the booking collection.",
	})

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected booking submissions by failing field.",
		},
		[]string{"field"},
	)

	unlockAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_unlock_attempts_total",
			Help:      "Admin unlock attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			bookingsDeleted,
			bookingsCleared,
			validationFailures,
			unlockAttempts,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncValidationFailure counts one failing field of a rejected submission.
func IncValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}

// IncUnlock counts an unlock attempt.
func IncUnlock(ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	unlockAttempts.WithLabelValues(result).Inc()
}

// Subscribe feeds the booking counters from the event bus.
func Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, func(_ *events.Event) error {
		bookingsCreated.Inc()
		return nil
	})
	bus.Subscribe(events.EventBookingDeleted, func(_ *events.Event) error {
		bookingsDeleted.Inc()
		return nil
	})
	bus.Subscribe(events.EventBookingsCleared, func(_ *events.Event) error {
		bookingsCleared.Inc()
		return nil
	})
}
