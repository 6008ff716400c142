package middlewares

import (
	"log/slog"

	"campusgpt-backend/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler centralizes error responses and keeps messages sanitized:
// clients see a short message field, wrapped driver errors stay in the log.
func NewErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// 1) Taxonomy errors (status from the kind)
		if ae := apperr.As(err); ae != nil {
			if ae.HTTPStatus() >= fiber.StatusInternalServerError {
				log.Error("request failed", "path", c.Path(), "error", err)
			}
			return c.Status(ae.HTTPStatus()).JSON(fiber.Map{"message": ae.Message})
		}

		// 2) Fiber errors (use their status code + message)
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		// 3) Validation errors (422 + per-field info)
		if ve, ok := err.(validator.ValidationErrors); ok {
			out := make(map[string]string, len(ve))
			for _, fe := range ve {
				out[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "validation failed",
				"errors":  out,
			})
		}

		// 4) Unknown errors (500)
		log.Error("internal error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}
