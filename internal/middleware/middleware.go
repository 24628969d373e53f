package middleware

import (
	"strconv"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/metrics"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger logs one line per request and records request metrics.
// Errors returned down the chain are handed to the app's error handler here
// so the logged status is the one the client receives.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"route":      route,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request completed", fields)
		case status >= fiber.StatusBadRequest:
			log.Warn("request completed", fields)
		default:
			log.Info("request completed", fields)
		}
		return nil
	}
}
