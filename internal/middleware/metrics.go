package middleware

import (
	"strconv"
	"time"

	"quizmaster/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latencies per route template, so
// /api/attempts/:id is one series regardless of the id.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		endpoint := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		metrics.RequestCounter.WithLabelValues(c.Method(), endpoint, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())
		return nil
	}
}
