package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Route labels use c.FullPath() so cardinality stays bounded by the route
// table; unmatched requests are labelled "unmatched".
var (
	httpReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpLat = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Requests currently being served.",
	})

	httpRespSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Response body size by method and route.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B .. 4MiB
	}, []string{"method", "path"})

	policiesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policies_created_total",
		Help: "Policy create requests that succeeded, split by whether a stored result was replayed.",
	}, []string{"replayed"})

	storeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_store_failures_total",
		Help: "Requests answered 503 because the policy store failed, by route.",
	}, []string{"path"})
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, policiesCreated, storeFailures)
}

// Metrics records request count, latency, in-flight gauge and response size.
// Expose them with promhttp.Handler on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		method, path := c.Request.Method, routeLabel(c)
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(n))
		}
	}
}

// PolicyCreated counts a successful create.
func PolicyCreated(replayed bool) {
	policiesCreated.WithLabelValues(strconv.FormatBool(replayed)).Inc()
}

// StoreFailure counts a 503 caused by the policy store.
func StoreFailure(c *gin.Context) {
	storeFailures.WithLabelValues(routeLabel(c)).Inc()
}

func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
