package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the host connection is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func RegisterRoutes(app *fiber.App, h *FunctionHandler, host Pinger) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"host_connection": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if host == nil {
			checks["host_connection"] = "not configured"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else {
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := host.Ping(healthCtx); err != nil {
				checks["host_connection"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Get("/functions", h.List)
	v1.Post("/functions/:name", h.Call)
}
