package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/notification"
	"github.com/linkvault/linkvault_api/internal/profile"
	"github.com/linkvault/linkvault_api/internal/session"
	"github.com/linkvault/linkvault_api/internal/token"
	"github.com/linkvault/linkvault_api/internal/user"
)

// Service orchestrates the account lifecycle across the user directory, role
// profiles, the token issuer and the notifier. It owns no storage.
type Service struct {
	users         *user.Service
	profiles      *profile.Service
	tokens        *token.Service
	sessions      *session.Issuer
	notifier      notification.Notifier
	templates     *notification.Templates
	emailTokenTTL time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Deps groups the collaborators of Service.
type Deps struct {
	Users         *user.Service
	Profiles      *profile.Service
	Tokens        *token.Service
	Sessions      *session.Issuer
	Notifier      notification.Notifier
	Templates     *notification.Templates
	EmailTokenTTL time.Duration
	Logger        *slog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		users:         d.Users,
		profiles:      d.Profiles,
		tokens:        d.Tokens,
		sessions:      d.Sessions,
		notifier:      d.Notifier,
		templates:     d.Templates,
		emailTokenTTL: d.EmailTokenTTL,
		logger:        d.Logger,
		now:           time.Now,
	}
}

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Email    string
	Password string
	Phone    string
	Type     string
}

// LoginInput carries sign-in fields. An empty Type means customer.
type LoginInput struct {
	Email    string
	Password string
	Type     string
}

// Register creates the user, its role profile, links them and returns a
// session token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	u, err := s.users.AddUser(ctx, user.NewUserInput{Email: in.Email, Password: in.Password, Phone: in.Phone, Type: in.Type})
	if err != nil {
		return "", err
	}

	var link user.UpdateInput
	switch u.Type {
	case user.TypeCustomer:
		c, err := s.profiles.AddCustomer(ctx, u.ID)
		if err != nil {
			return "", s.abandon(ctx, u, err)
		}
		link.Customer = c.ID
	case user.TypeAdmin:
		a, err := s.profiles.AddAdmin(ctx, u.ID)
		if err != nil {
			return "", s.abandon(ctx, u, err)
		}
		link.Admin = a.ID
	}

	linked, err := s.users.UpdateUser(ctx, u.ID, link)
	if err != nil {
		return "", s.abandon(ctx, u, err)
	}
	return s.sign(linked)
}

// AddAdmin registers an admin account.
func (s *Service) AddAdmin(ctx context.Context, email, password string) (string, error) {
	return s.Register(ctx, RegisterInput{Email: email, Password: password, Type: user.TypeAdmin})
}

// Login checks credentials, account type and status, stamps the login time
// and returns a session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	if in.Email == "" || in.Password == "" {
		return "", apperr.BadRequest("Please enter login credentials!")
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		return "", apperr.NotFound("User not registered!")
	}
	if err != nil {
		return "", err
	}

	wantType := in.Type
	if wantType == "" {
		wantType = user.TypeCustomer
	}
	if u.Type != wantType {
		return "", apperr.NotFound("User not found!")
	}
	if !s.users.CheckPassword(u, in.Password) {
		return "", apperr.Unauthorized("Invalid password!")
	}
	if u.Status != user.StatusActive {
		return "", apperr.Forbidden(fmt.Sprintf("User %s!", u.Status))
	}

	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		return "", err
	}
	return s.sign(u)
}

// EmailResetPassword sends a password reset link.
func (s *Service) EmailResetPassword(ctx context.Context, email string) error {
	issued, err := s.tokens.GenerateEmailToken(ctx, email, s.now().Add(s.emailTokenTTL))
	if err != nil {
		return err
	}
	body, err := s.templates.ResetPassword(issued.User.Name, issued.User.ID, issued.Token.Token, s.validFor())
	if err != nil {
		return err
	}
	return s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindPasswordReset,
		Destination: issued.User.Email,
		Subject:     "Password reset",
		Body:        body,
	})
}

// EmailVerifyEmail sends an email verification link.
func (s *Service) EmailVerifyEmail(ctx context.Context, email string) error {
	issued, err := s.tokens.GenerateEmailToken(ctx, email, s.now().Add(s.emailTokenTTL))
	if err != nil {
		return err
	}
	body, err := s.templates.VerifyEmail(issued.User.Name, issued.User.ID, issued.Token.Token, s.validFor())
	if err != nil {
		return err
	}
	return s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindEmailVerification,
		Destination: issued.User.Email,
		Subject:     "Email verification",
		Body:        body,
	})
}

// EmailWelcomeUser sends the welcome email.
func (s *Service) EmailWelcomeUser(ctx context.Context, email, name string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.BadRequest("Please enter email!")
	}
	body, err := s.templates.Welcome(name)
	if err != nil {
		return err
	}
	return s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindWelcome,
		Destination: email,
		Subject:     "Greetings",
		Body:        body,
	})
}

// ResetPassword redeems a reset token.
func (s *Service) ResetPassword(ctx context.Context, userID, tokenValue, password string) error {
	return s.tokens.ResetPassword(ctx, userID, tokenValue, password)
}

// VerifyUserEmail redeems a verification token.
func (s *Service) VerifyUserEmail(ctx context.Context, userID, tokenValue string) error {
	return s.tokens.VerifyUserEmail(ctx, userID, tokenValue)
}

func (s *Service) sign(u user.User) (string, error) {
	return s.sessions.Sign(session.Subject{ID: u.ID, Email: u.Email, Phone: u.Phone, Type: u.Type})
}

// abandon removes a half-registered user and any profile created for it so
// the email can be reused.
func (s *Service) abandon(ctx context.Context, u user.User, cause error) error {
	if err := s.profiles.RemoveFor(ctx, u.ID); err != nil && s.logger != nil {
		s.logger.Warn("rollback registration profiles", slog.String("user_id", u.ID), slog.Any("error", err))
	}
	if _, err := s.users.DeleteUser(ctx, u.ID); err != nil && s.logger != nil {
		s.logger.Warn("rollback registration", slog.String("user_id", u.ID), slog.Any("error", err))
	}
	return cause
}

func (s *Service) validFor() string {
	minutes := int(s.emailTokenTTL.Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
