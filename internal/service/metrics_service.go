package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP, cache and fleet
// instrumentation. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec

	locationUpdates     *prometheus.CounterVec
	passengerChanges    *prometheus.CounterVec
	capacityRejections  *prometheus.CounterVec
	assignmentConflicts prometheus.Counter
	auditFailures       prometheus.Counter
	auditRetries        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		locationUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_location_updates_total",
			Help: "Accepted location pushes by reported bus status",
		}, []string{"status"}),
		passengerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_passenger_changes_total",
			Help: "Accepted boarding and alighting changes",
		}, []string{"operation", "type"}),
		capacityRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_capacity_rejections_total",
			Help: "Passenger changes rejected by the seating ceiling or a negative count",
		}, []string{"operation", "reason"}),
		assignmentConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_assignment_conflicts_total",
			Help: "Personnel assignments rejected because the person is bound elsewhere",
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_audit_append_failures_total",
			Help: "Location history appends that failed on the request path",
		}),
		auditRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_audit_retries_total",
			Help: "Background location history retries by outcome",
		}, []string{"outcome"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheLookups,
		m.locationUpdates, m.passengerChanges, m.capacityRejections,
		m.assignmentConflicts, m.auditFailures, m.auditRetries,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// LocationUpdated counts an accepted location push.
func (m *MetricsService) LocationUpdated(status string) {
	if m == nil {
		return
	}
	m.locationUpdates.WithLabelValues(status).Inc()
}

// PassengersChanged counts an accepted boarding or alighting change.
func (m *MetricsService) PassengersChanged(operation, passengerType string) {
	if m == nil {
		return
	}
	m.passengerChanges.WithLabelValues(operation, passengerType).Inc()
}

// CapacityRejected counts a change refused by the passenger bounds.
func (m *MetricsService) CapacityRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.capacityRejections.WithLabelValues(operation, reason).Inc()
}

// AssignmentConflict counts an assignment refused for double binding.
func (m *MetricsService) AssignmentConflict() {
	if m == nil {
		return
	}
	m.assignmentConflicts.Inc()
}

// AuditAppendFailed counts a history append that failed inline.
func (m *MetricsService) AuditAppendFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// AuditRetry counts a background retry outcome such as recovered or dropped.
func (m *MetricsService) AuditRetry(outcome string) {
	if m == nil {
		return
	}
	m.auditRetries.WithLabelValues(outcome).Inc()
}
