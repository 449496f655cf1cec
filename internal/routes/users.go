package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/middleware"
	"github.com/linkvault/linkvault_api/internal/user"
)

// RegisterUserRoutes wires self-service and admin user management.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, authn fiber.Handler) {
	group := r.Group("/users", authn)
	group.Get("/me", h.Me)
	group.Put("/me", h.UpdateMe)
	group.Put("/me/image", h.UploadImage)

	adminOnly := middleware.RequireAdmin()
	group.Get("/", adminOnly, h.List)
	group.Get("/:id", adminOnly, h.Get)
	group.Put("/:id", adminOnly, h.Update)
	group.Delete("/:id", adminOnly, h.Delete)
}
