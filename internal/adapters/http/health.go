package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler is the liveness probe.
func HealthHandler(version string) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": version,
		})
	}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

const (
	checkOK            = "ok"
	checkFailed        = "error"
	checkNotConfigured = "not configured"
)

// ReadyHandler probes the database, the cache and NATS. A component that is
// not configured never fails readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := map[string]readinessCheck{
			"database": pingCheck(ctx, deps.DB),
			"cache":    pingCheck(ctx, deps.Cache),
			"nats":     {Status: checkNotConfigured},
		}
		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = readinessCheck{Status: checkOK}
			} else {
				checks["nats"] = readinessCheck{Status: checkFailed, Error: deps.NATS.Status().String()}
			}
		}

		status, code := "ready", fiber.StatusOK
		for _, chk := range checks {
			if chk.Status == checkFailed {
				status, code = "not ready", fiber.StatusServiceUnavailable
				break
			}
		}

		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}

func pingCheck(ctx context.Context, p Pinger) readinessCheck {
	if p == nil {
		return readinessCheck{Status: checkNotConfigured}
	}
	start := time.Now()
	err := p.Ping(ctx)
	chk := readinessCheck{Status: checkOK, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		chk.Status = checkFailed
		chk.Error = err.Error()
	}
	return chk
}
