package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// ActiveWebSockets is the number of open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialnova_active_websockets",
		Help: "Number of open WebSocket connections",
	})

	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collector
// registers with the default registry, so it is only built once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics when a collector is configured.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	if p == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return p.Middleware
}
