package metrics

import "github.com/prometheus/client_golang/prometheus"

// Line feed metrics
var (
	LineCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "line_cache_requests_total",
		Help:      "Line cache lookups by result",
	}, []string{"result"})
	LineFeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "line_feed_requests_total",
		Help:      "Requests to the bookmaker prop feed by status",
	}, []string{"status"})
	LineFeedLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "line_feed_latency_seconds",
		Help:      "Latency of bookmaker prop feed requests",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordLineCacheHit records a line cache hit.
func RecordLineCacheHit() {
	LineCacheRequestsTotal.WithLabelValues("hit").Inc()
}

// RecordLineCacheMiss records a line cache miss.
func RecordLineCacheMiss() {
	LineCacheRequestsTotal.WithLabelValues("miss").Inc()
}

// RecordLineFeedRequest records a prop feed request.
// status should be one of: "success", "not_found", "failure"
func RecordLineFeedRequest(status string, durationSeconds float64) {
	LineFeedRequestsTotal.WithLabelValues(status).Inc()
	LineFeedLatency.Observe(durationSeconds)
}
