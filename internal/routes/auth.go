package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/auth"
)

// RegisterAuthRoutes wires account lifecycle endpoints. None require a session.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/password/email", h.EmailResetPassword)
	group.Patch("/password/reset", h.ResetPassword)
	group.Post("/email/verification", h.EmailVerifyEmail)
	group.Patch("/email/verify", h.VerifyUserEmail)
	group.Get("/email/verify", h.VerifyUserEmail)
	group.Post("/email/welcome", h.EmailWelcomeUser)
	group.Post("/admins", h.AddAdmin)
}
