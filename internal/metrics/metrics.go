// Package metrics provides Prometheus instrumentation for the marketplace.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PurchasesTotal counts recorded purchases, partitioned by variant.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketarena_purchases_total",
		Help: "Total number of purchases recorded in the ledger",
	}, []string{"variant"})

	// ProductsCreated counts product listings created, partitioned by variant.
	ProductsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketarena_products_created_total",
		Help: "Total number of product listings created",
	}, []string{"variant"})

	// PhaseTransitions counts orchestrator phase changes.
	PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketarena_phase_transitions_total",
		Help: "Total number of phase transitions",
	}, []string{"phase"})

	// RankingRecomputes counts ranking passes.
	RankingRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketarena_ranking_recomputes_total",
		Help: "Total number of ranking recomputations",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketarena_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketarena_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request count and duration per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		// Use the route pattern for the path label to avoid high cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
