package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookingapi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingapi_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "entity"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookingapi_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "entity"},
	)

	BookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingapi_booking_operations_total",
			Help: "Lifecycle operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	CanceledBookingsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingapi_canceled_bookings_evicted_total",
			Help: "Canceled bookings removed because a new reservation took their range",
		},
	)

	PropertyLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookingapi_property_lock_wait_seconds",
			Help:    "Time spent waiting for the per-property lock",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingapi_cache_hits_total",
			Help: "Number of cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingapi_cache_misses_total",
			Help: "Number of cache misses",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookingapi_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
)

func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordDatabaseOperation(operation, entity string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, entity).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
}

// RecordBookingOperation counts a lifecycle call. outcome is "success" or the
// error kind that ended it.
func RecordBookingOperation(operation, outcome string) {
	BookingOperations.WithLabelValues(operation, outcome).Inc()
}

func RecordEvictions(n int) {
	CanceledBookingsEvicted.Add(float64(n))
}

func RecordPropertyLockWait(d time.Duration) {
	PropertyLockWait.Observe(d.Seconds())
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
