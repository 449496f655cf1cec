package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service manages role profiles attached to users.
type Service struct {
	repo Repository
}

// NewService creates a profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddCustomer creates a customer profile back-referencing userID.
func (s *Service) AddCustomer(ctx context.Context, userID string) (Customer, error) {
	c := Customer{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// AddAdmin creates an admin profile back-referencing userID.
func (s *Service) AddAdmin(ctx context.Context, userID string) (Admin, error) {
	a := Admin{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateAdmin(ctx, a); err != nil {
		return Admin{}, err
	}
	return a, nil
}

// Customer returns the customer profile, or nil when absent.
func (s *Service) Customer(ctx context.Context, id string) (*Customer, error) {
	c, err := s.repo.FindCustomer(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Admin returns the admin profile, or nil when absent.
func (s *Service) Admin(ctx context.Context, id string) (*Admin, error) {
	a, err := s.repo.FindAdmin(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CustomerExists reports whether a customer profile with id exists.
func (s *Service) CustomerExists(ctx context.Context, id string) (bool, error) {
	c, err := s.Customer(ctx, id)
	return c != nil, err
}

// AdminExists reports whether an admin profile with id exists.
func (s *Service) AdminExists(ctx context.Context, id string) (bool, error) {
	a, err := s.Admin(ctx, id)
	return a != nil, err
}

// CountFor reports how many customer and admin profiles belong to userID.
func (s *Service) CountFor(ctx context.Context, userID string) (customers, admins int, err error) {
	return s.repo.CountByUser(ctx, userID)
}

// RemoveFor deletes every profile belonging to userID.
func (s *Service) RemoveFor(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

// Purge removes all profiles.
func (s *Service) Purge(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
