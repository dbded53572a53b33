package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login attempts by outcome (success, invalid_password, not_found).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstream_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// TokenRotations counts refresh-token rotations by outcome (success, invalid, reused).
	TokenRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstream_token_rotations_total",
		Help: "Total number of refresh token rotations by outcome",
	}, []string{"outcome"})

	// MediaUploads counts media uploads by kind and outcome.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstream_media_uploads_total",
		Help: "Total number of media uploads by kind and outcome",
	}, []string{"kind", "outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstream_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the fiberprometheus request middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
