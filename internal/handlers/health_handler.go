package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	service string
	opts    Options
}

func NewHealthHandler(store Pinger, serviceName string, opts Options) *HealthHandler {
	return &HealthHandler{store: store, service: serviceName, opts: opts.withDefaults()}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

func (h *HealthHandler) HealthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.opts.Logger.Warn("health check failed", map[string]interface{}{"error": err})
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unavailable",
				"service": h.service,
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"service": h.service,
	})
}
