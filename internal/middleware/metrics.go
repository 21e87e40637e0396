package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PageCacheHits counts page cache hits by route key.
	PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_page_cache_hits_total",
		Help: "Total number of page cache hits by route",
	}, []string{"route"})

	// PageCacheMisses counts page cache misses by route key.
	PageCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_page_cache_misses_total",
		Help: "Total number of page cache misses by route",
	}, []string{"route"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the Prometheus HTTP middleware for the service. The
// middleware registers its collectors globally, so it is created once and
// shared across server instances.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// RegisterMetrics attaches the Prometheus middleware and scrape endpoint.
func RegisterMetrics(app *fiber.App, prom *fiberprometheus.FiberPrometheus) {
	if prom == nil {
		return
	}
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
