package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/middleware"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandler renders every handler error as {"success":false,"message":...}.
// Unexpected errors are logged and hidden behind a generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := http.StatusInternalServerError
		message := "Internal server error!"

		var appErr *apperr.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			status, message = appErr.Status, appErr.Message
		case errors.As(err, &fiberErr):
			status, message = fiberErr.Code, fiberErr.Message
		default:
			// "message|||status" strings from older callers.
			if legacy := apperr.Parse(err.Error()); legacy.Status != http.StatusInternalServerError {
				status, message = legacy.Status, legacy.Message
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", middleware.RequestIDFrom(c.UserContext())),
				slog.Any("error", err))
		}
		return c.Status(status).JSON(errorResponse{Success: false, Message: message})
	}
}
