package handlers

import (
	"errors"
	"time"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/gofiber/fiber/v3"
)

const defaultTimeout = 10 * time.Second

// Options are shared by all handlers.
type Options struct {
	// Timeout bounds each store operation started by a request.
	Timeout time.Duration
	// ExposeErrors adds the underlying error detail to error responses.
	ExposeErrors bool
	Logger       logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.NewNoOpLogger()
	}
	return o
}

func success(c fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ErrorHandler writes every error as {success:false, message[, error]}.
func ErrorHandler(exposeDetails bool, log logger.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
			})
		}

		se := apperrors.Normalize(err)
		status := apperrors.HTTPStatus(se.Code)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"code":   se.Code,
				"error":  err,
			})
		}

		body := fiber.Map{
			"success": false,
			"message": se.Message,
		}
		if exposeDetails && se.Details != "" {
			body["error"] = se.Details
		}
		return c.Status(status).JSON(body)
	}
}
