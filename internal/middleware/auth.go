package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/session"
	"github.com/linkvault/linkvault_api/internal/user"
)

const localUserType = "user_type"

// Authenticate validates the bearer session token and loads the caller. Only
// active users get through.
func Authenticate(issuer *session.Issuer, users *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.Unauthorized("Please login to continue!")
		}
		claims, err := issuer.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return apperr.Unauthorized("Invalid token!")
		}

		u, err := users.FindByID(c.UserContext(), claims.UserID)
		if errors.Is(err, user.ErrNotFound) {
			return apperr.Unauthorized("User not found!")
		}
		if err != nil {
			return err
		}
		if u.Status != user.StatusActive {
			return apperr.Forbidden("User " + u.Status + "!")
		}

		c.Locals(user.LocalUserID, u.ID)
		c.Locals(localUserType, u.Type)
		return c.Next()
	}
}

// RequireAdmin admits only administrators. It must run after Authenticate.
func RequireAdmin() fiber.Handler {
	return requireType(user.TypeAdmin, "Unauthorized as admin!")
}

// RequireCustomer admits only customers. It must run after Authenticate.
func RequireCustomer() fiber.Handler {
	return requireType(user.TypeCustomer, "Unauthorized as customer!")
}

func requireType(want, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if t, _ := c.Locals(localUserType).(string); t != want {
			return apperr.Forbidden(message)
		}
		return c.Next()
	}
}
