package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revelare_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "revelare_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revelare_upstream_requests_total",
		Help: "Calls made to the Revelare API by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "revelare_upstream_request_duration_seconds",
		Help:    "Latency of Revelare API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	SessionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revelare_session_events_total",
		Help: "Session lifecycle events",
	}, []string{"event"})

	SearchSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revelare_search_superseded_total",
		Help: "Search responses discarded because a newer search was dispatched",
	})

	liveConnectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "revelare_live_connections",
		Help: "Open websocket live channels",
	})

	breakerOpenGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "revelare_upstream_breaker_open",
		Help: "1 while the upstream circuit breaker is open",
	})
)

var liveConnections int64

func IncLiveConnections() {
	atomic.AddInt64(&liveConnections, 1)
	liveConnectionsGauge.Inc()
}

func DecLiveConnections() {
	atomic.AddInt64(&liveConnections, -1)
	liveConnectionsGauge.Dec()
}

func GetLiveConnections() int64 {
	return atomic.LoadInt64(&liveConnections)
}

func SetBreakerOpen(open bool) {
	if open {
		breakerOpenGauge.Set(1)
		return
	}
	breakerOpenGauge.Set(0)
}

func RecordSessionEvent(event string) {
	SessionEventsTotal.WithLabelValues(event).Inc()
}
