package user

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/profile"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxOffset keeps page*limit far from integer overflow.
	maxOffset = 1 << 30
)

// ImageDeleter removes stored image files that a user no longer references.
type ImageDeleter interface {
	Delete(path string) error
}

// Service is the user directory.
type Service struct {
	repo     Repository
	profiles *profile.Service
	images   ImageDeleter
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a user directory. images may be nil.
func NewService(repo Repository, profiles *profile.Service, images ImageDeleter, logger *slog.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, images: images, logger: logger, now: time.Now}
}

// AddUser creates a user with a hashed password. An empty type defaults to customer.
func (s *Service) AddUser(ctx context.Context, in NewUserInput) (User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return User{}, apperr.BadRequest("Please enter email!")
	}
	if in.Password == "" {
		return User{}, apperr.BadRequest("Please enter password!")
	}
	userType := in.Type
	if userType == "" {
		userType = TypeCustomer
	}
	if !validType(userType) {
		return User{}, apperr.BadRequest("Please enter valid user type!")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Type:         userType,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, apperr.Conflict("Email already registered!")
		}
		return User{}, err
	}
	return user, nil
}

// UpdateUser merges the supplied fields into the user identified by id.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateInput) (User, error) {
	if id == "" {
		return User{}, apperr.BadRequest("Please enter user id!")
	}
	if _, err := uuid.Parse(id); err != nil {
		return User{}, apperr.BadRequest("Please enter valid user id!")
	}
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("User not found!")
	}
	if err != nil {
		return User{}, err
	}

	if in.Email != "" {
		user.Email = normalizeEmail(in.Email)
	}
	if in.Password != "" {
		if user.PasswordHash, err = hashPassword(in.Password); err != nil {
			return User{}, err
		}
	}
	if in.Phone != "" {
		user.Phone = strings.TrimSpace(in.Phone)
	}
	if in.Type != "" {
		if !validType(in.Type) {
			return User{}, apperr.BadRequest("Please enter valid user type!")
		}
		user.Type = in.Type
	}
	if in.Status != "" {
		if !validStatus(in.Status) {
			return User{}, apperr.BadRequest("Please enter valid user status!")
		}
		user.Status = in.Status
	}
	if in.FCM != nil {
		if in.FCM.Token == "" || in.FCM.Device == "" {
			return User{}, apperr.BadRequest("Please enter FCM token and device both!")
		}
		user.FCMs = upsertFCM(user.FCMs, *in.FCM)
	}
	if in.IsOnline != nil {
		user.IsOnline = *in.IsOnline
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.FirstName != "" || in.LastName != "" {
		user.Name = user.FirstName + " " + user.LastName
	}
	var staleImage string
	if in.Image != "" {
		if user.Image != "" && user.Image != in.Image {
			staleImage = user.Image
		}
		user.Image = in.Image
	}
	if in.Coordinates != nil {
		if len(in.Coordinates) != 2 {
			return User{}, apperr.BadRequest("Please enter location longitude and latitude both!")
		}
		user.Location = &Location{Type: "Point", Coordinates: append([]float64(nil), in.Coordinates...)}
	}
	if in.Customer != "" {
		ok, err := s.profiles.CustomerExists(ctx, in.Customer)
		if err != nil {
			return User{}, err
		}
		if !ok {
			return User{}, apperr.NotFound("Customer not found!")
		}
		user.CustomerID = in.Customer
		user.IsCustomer = true
	}
	if in.Admin != "" {
		ok, err := s.profiles.AdminExists(ctx, in.Admin)
		if err != nil {
			return User{}, err
		}
		if !ok {
			return User{}, apperr.NotFound("Admin not found!")
		}
		user.AdminID = in.Admin
		user.IsAdmin = true
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return User{}, apperr.Conflict("Email already registered!")
		case errors.Is(err, ErrNotFound):
			return User{}, apperr.NotFound("User not found!")
		}
		return User{}, err
	}
	if staleImage != "" {
		s.deleteImage(staleImage)
	}
	return user, nil
}

// DeleteUser removes the user identified by id and returns the removed record.
func (s *Service) DeleteUser(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, apperr.BadRequest("Please enter user id!")
	}
	if _, err := uuid.Parse(id); err != nil {
		return User{}, apperr.BadRequest("Please enter valid user id!")
	}
	user, err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("user not found!")
	}
	if err != nil {
		return User{}, err
	}
	if user.Image != "" {
		s.deleteImage(user.Image)
	}
	return user, nil
}

// GetUser returns the first user matching q with its role profile populated,
// or nil when nothing matches. An empty query matches nothing.
func (s *Service) GetUser(ctx context.Context, q Query) (*Profile, error) {
	if q.Email != "" {
		q.Email = normalizeEmail(q.Email)
	}
	user, err := s.repo.FindOne(ctx, q)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.FCMs = nil

	p := &Profile{User: user}
	switch user.Type {
	case TypeCustomer:
		if user.CustomerID != "" {
			if p.Customer, err = s.profiles.Customer(ctx, user.CustomerID); err != nil {
				return nil, err
			}
		}
	case TypeAdmin:
		if user.AdminID != "" {
			if p.Admin, err = s.profiles.Admin(ctx, user.AdminID); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// FindByEmail returns the raw user record for credential checks.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindOne(ctx, Query{Email: normalizeEmail(email)})
}

// FindByID returns the raw user record.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetUsers searches users page by page. The limit is capped at 100 and pages
// past the end come back empty.
func (s *Service) GetUsers(ctx context.Context, in SearchInput) (Page, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	page := in.Page - 1
	if page < 0 {
		page = 0
	}
	page = min(page, maxOffset/limit)
	f := SearchFilter{
		Type:      in.Type,
		ExcludeID: in.Exclude,
		Keyword:   strings.TrimSpace(in.Keyword),
		Offset:    page * limit,
		Limit:     limit,
	}
	if f.Type == "" {
		f.ExcludeType = TypeAdmin
	}

	users, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if users == nil {
		users = []User{}
	}
	return Page{
		Data:       users,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Service) CheckPassword(user User, password string) bool {
	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil
}

// SetPassword replaces the user's password.
func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return apperr.BadRequest("Please enter password!")
	}
	_, err := s.UpdateUser(ctx, id, UpdateInput{Password: password})
	return err
}

// MarkEmailVerified flags the user's email as verified.
func (s *Service) MarkEmailVerified(ctx context.Context, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("User not found!")
	}
	if err != nil {
		return err
	}
	user.IsEmailVerified = true
	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

// RecordLogin stamps the last login time.
func (s *Service) RecordLogin(ctx context.Context, id string) error {
	return s.repo.UpdateLastLogin(ctx, id, s.now())
}

// Purge removes every user.
func (s *Service) Purge(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *Service) deleteImage(path string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(path); err != nil && s.logger != nil {
		s.logger.Warn("delete stale image", slog.String("image", path), slog.Any("error", err))
	}
}

func upsertFCM(fcms []FCM, fcm FCM) []FCM {
	for i := range fcms {
		if fcms[i].Device == fcm.Device {
			fcms[i].Token = fcm.Token
			return fcms
		}
	}
	return append(fcms, fcm)
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
