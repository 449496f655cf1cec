package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/admin"
	"github.com/linkvault/linkvault_api/internal/middleware"
)

func RegisterAdminRoutes(r fiber.Router, h *admin.Handler, authn fiber.Handler) {
	group := r.Group("/admins", authn, middleware.RequireAdmin())
	group.Delete("/clean/DB", h.CleanDB)
}
