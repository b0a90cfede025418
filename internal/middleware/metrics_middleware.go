package middleware

import (
	"strconv"
	"time"

	"go-tabung-ws/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency labelled by route template.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.RecordHTTPRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
