package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts requests by route template, method and status.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grove_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grove_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"route"})

	// reloadsTotal counts dataset reloads. Labels: "success", "failure".
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grove_dataset_reloads_total",
		Help: "Dataset reloads by result",
	}, []string{"result"})

	searchPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grove_search_paths",
		Help:    "Number of distinct matches per search",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})
)

// requestMetrics records every request in requestsTotal and
// requestDuration.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
