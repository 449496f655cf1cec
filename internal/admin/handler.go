package admin

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
)

const secretHeader = "secret"

type Handler struct {
	svc    *Service
	secret string
}

func NewHandler(svc *Service, secret string) *Handler {
	return &Handler{svc: svc, secret: secret}
}

// CleanDB wipes all account data. The caller must present the maintenance secret.
func (h *Handler) CleanDB(c *fiber.Ctx) error {
	got := c.Get(secretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return apperr.BadRequest("Invalid SECRET!")
	}
	if err := h.svc.CleanDB(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "DB cleaned successfully!"})
}
