package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/user"
)

// SecretHeader carries the maintenance secret for privileged account operations.
const SecretHeader = "secret"

// Handler exposes account lifecycle endpoints.
type Handler struct {
	svc    *Service
	secret string
}

func NewHandler(svc *Service, secret string) *Handler {
	return &Handler{svc: svc, secret: secret}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

type emailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type redeemRequest struct {
	User     string `json:"user" query:"user"`
	Token    string `json:"token" query:"token"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register signs up a customer. Admin sign-up needs the maintenance secret.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if req.Type == user.TypeAdmin && !h.secretMatches(c) {
		return apperr.Forbidden("Invalid SECRET!")
	}
	token, err := h.svc.Register(c.UserContext(), RegisterInput{Email: req.Email, Password: req.Password, Phone: req.Phone, Type: req.Type})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(tokenResponse{Success: true, Token: token})
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	token, err := h.svc.Login(c.UserContext(), LoginInput{Email: req.Email, Password: req.Password, Type: req.Type})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{Success: true, Token: token})
}

// AddAdmin creates an admin account when the maintenance secret matches.
func (h *Handler) AddAdmin(c *fiber.Ctx) error {
	if !h.secretMatches(c) {
		return apperr.BadRequest("Invalid SECRET!")
	}
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	token, err := h.svc.AddAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(tokenResponse{Success: true, Token: token})
}

// EmailResetPassword mails a password reset link.
func (h *Handler) EmailResetPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if err := h.svc.EmailResetPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(messageResponse{Success: true, Message: "Reset password link sent to your email!"})
}

// ResetPassword redeems a reset link.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if err := h.svc.ResetPassword(c.UserContext(), req.User, req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(messageResponse{Success: true, Message: "Password reset successfully!"})
}

// EmailVerifyEmail mails an email verification link.
func (h *Handler) EmailVerifyEmail(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if err := h.svc.EmailVerifyEmail(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(messageResponse{Success: true, Message: "Verification link sent to your email!"})
}

// VerifyUserEmail redeems a verification link from the body or, for links
// opened in a browser, the query string.
func (h *Handler) VerifyUserEmail(c *fiber.Ctx) error {
	var req redeemRequest
	if c.Method() == fiber.MethodGet {
		if err := c.QueryParser(&req); err != nil {
			return apperr.BadRequest(err.Error())
		}
	} else if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if err := h.svc.VerifyUserEmail(c.UserContext(), req.User, req.Token); err != nil {
		return err
	}
	return c.JSON(messageResponse{Success: true, Message: "Email verified successfully!"})
}

// EmailWelcomeUser mails the welcome message.
func (h *Handler) EmailWelcomeUser(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if err := h.svc.EmailWelcomeUser(c.UserContext(), req.Email, req.Name); err != nil {
		return err
	}
	return c.JSON(messageResponse{Success: true, Message: "Welcome email sent!"})
}

func (h *Handler) secretMatches(c *fiber.Ctx) bool {
	got := c.Get(SecretHeader)
	return h.secret != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}
