package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photohunt_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photohunt_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	webhookVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photohunt_webhook_verdicts_total",
		Help: "Webhook verification verdicts by reason.",
	}, []string{"reason"})
)

// Metrics records request counts and latency per route pattern.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath() // route pattern, not the raw path
		if route == "" {
			route = "unmatched"
		}
		c.Next()
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CountWebhookVerdict feeds the verdict counter from the webhook handler.
func CountWebhookVerdict(reason string) {
	webhookVerdictsTotal.WithLabelValues(reason).Inc()
}
