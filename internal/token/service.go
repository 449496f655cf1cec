package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/session"
	"github.com/linkvault/linkvault_api/internal/user"
)

// Issued is a token together with the user it was issued for.
type Issued struct {
	User  user.User
	Token UserToken
}

// Service mints and redeems single-use email action tokens.
type Service struct {
	store  Store
	users  *user.Service
	signer *session.Issuer
	now    func() time.Time
}

// NewService builds a token issuer.
func NewService(store Store, users *user.Service, signer *session.Issuer) *Service {
	return &Service{store: store, users: users, signer: signer, now: time.Now}
}

// GenerateEmailToken returns the user's live token, minting one that expires
// at expireAt when none exists.
func (s *Service) GenerateEmailToken(ctx context.Context, email string, expireAt time.Time) (Issued, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return Issued{}, apperr.NotFound("User with given email doesn't exist!")
	}
	if err != nil {
		return Issued{}, err
	}

	existing, err := s.store.Find(ctx, u.ID)
	switch {
	case err == nil && !existing.Expired(s.now()):
		return Issued{User: u, Token: existing}, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Issued{}, err
	}

	value, err := s.signer.SignAction(session.Subject{ID: u.ID, Email: u.Email, Phone: u.Phone, Type: u.Type})
	if err != nil {
		return Issued{}, err
	}
	t := UserToken{UserID: u.ID, Token: value, ExpireAt: expireAt.UTC()}
	if err := s.store.Save(ctx, t); err != nil {
		return Issued{}, err
	}
	return Issued{User: u, Token: t}, nil
}

// ResetPassword sets a new password when token is the user's live token, then
// consumes the token.
func (s *Service) ResetPassword(ctx context.Context, userID, value, password string) error {
	if err := s.redeem(ctx, userID, value); err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, userID, password); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID)
}

// VerifyUserEmail flags the user's email as verified when token is the user's
// live token, then consumes the token.
func (s *Service) VerifyUserEmail(ctx context.Context, userID, value string) error {
	if err := s.redeem(ctx, userID, value); err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID)
}

// Purge drops every stored token.
func (s *Service) Purge(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

func (s *Service) redeem(ctx context.Context, userID, value string) error {
	if userID == "" {
		return apperr.BadRequest("Invalid link!")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.BadRequest("Invalid link!")
		}
		return err
	}
	t, err := s.store.Find(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return apperr.BadRequest("Invalid or expired link!")
	}
	if err != nil {
		return err
	}
	if value == "" || t.Expired(s.now()) || subtle.ConstantTimeCompare([]byte(t.Token), []byte(value)) != 1 {
		return apperr.BadRequest("Invalid or expired link!")
	}
	if claims, err := s.signer.ParseAction(value); err != nil || claims.UserID != userID {
		return apperr.BadRequest("Invalid or expired link!")
	}
	return nil
}
