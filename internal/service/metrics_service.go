package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the dashboard
// tier: HTTP traffic, domain commands and cache behaviour.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	commandTotal    *prometheus.CounterVec
	rollbackTotal   *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	upstreamLatency *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	commandTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_commands_total",
		Help: "Domain commands by action and outcome",
	}, []string{"action", "outcome"})

	rollbackTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_command_rollbacks_total",
		Help: "Optimistic mutations rolled back after a remote failure",
	}, []string{"action"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache misses",
	})
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_read_duration_seconds",
		Help:    "Cache read latency",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_duration_seconds",
		Help:    "Cache write latency",
		Buckets: prometheus.DefBuckets,
	})

	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of upstream enrollment API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(requestDuration, requestTotal, commandTotal, rollbackTotal,
		cacheHits, cacheMisses, cacheLatency, cacheWrite, upstreamLatency)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		commandTotal:    commandTotal,
		rollbackTotal:   rollbackTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		upstreamLatency: upstreamLatency,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCommand counts a settled or rejected domain command.
func (s *MetricsService) RecordCommand(action, outcome string) {
	s.commandTotal.WithLabelValues(action, outcome).Inc()
}

// RecordRollback counts a rolled-back optimistic mutation.
func (s *MetricsService) RecordRollback(action string) {
	s.rollbackTotal.WithLabelValues(action).Inc()
}

// RecordCacheOperation records a cache read and whether it hit.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
	s.cacheLatency.Observe(duration.Seconds())
}

// ObserveCacheWrite records a cache write latency.
func (s *MetricsService) ObserveCacheWrite(duration time.Duration) {
	s.cacheWrite.Observe(duration.Seconds())
}

// ObserveUpstream records one upstream API call.
func (s *MetricsService) ObserveUpstream(operation string, duration time.Duration) {
	s.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
