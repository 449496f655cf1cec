package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/plaid"
)

// RegisterPlaidRoutes wires bank linking endpoints for signed-in users.
func RegisterPlaidRoutes(r fiber.Router, h *plaid.Handler, authn fiber.Handler) {
	group := r.Group("/plaid", authn)
	group.Post("/link-token", h.CreateLinkToken)
	group.Post("/public-token/exchange", h.ExchangePublicToken)
	group.Post("/processor-token", h.CreateProcessorToken)
	group.Get("/items", h.Items)
}
