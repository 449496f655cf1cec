package plaid

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/user"
)

// Handler exposes Plaid endpoints for the authenticated user.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type exchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// CreateLinkToken returns a Link handshake token.
func (h *Handler) CreateLinkToken(c *fiber.Ctx) error {
	var opts LinkTokenOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return apperr.BadRequest(err.Error())
		}
	}
	token, err := h.svc.CreateLinkToken(c.UserContext(), userID(c), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": token})
}

// ExchangePublicToken stores the item behind a Link public token.
func (h *Handler) ExchangePublicToken(c *fiber.Ctx) error {
	var req exchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	item, err := h.svc.ExchangePublicToken(c.UserContext(), userID(c), req.PublicToken)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// CreateProcessorToken issues a processor token.
func (h *Handler) CreateProcessorToken(c *fiber.Ctx) error {
	var req ProcessorTokenInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	token, err := h.svc.CreateProcessorToken(c.UserContext(), userID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "processorToken": token})
}

// Items lists the user's linked items.
func (h *Handler) Items(c *fiber.Ctx) error {
	items, err := h.svc.Items(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(user.LocalUserID).(string)
	return id
}
