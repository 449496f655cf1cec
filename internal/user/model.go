package user

import (
	"time"

	"github.com/linkvault/linkvault_api/internal/profile"
)

const (
	TypeCustomer = "customer"
	TypeAdmin    = "admin"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// User is an account identity record.
type User struct {
	ID              string     `json:"_id"`
	Email           string     `json:"email"`
	PasswordHash    []byte     `json:"-"`
	Phone           string     `json:"phone,omitempty"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	CustomerID      string     `json:"customer,omitempty"`
	AdminID         string     `json:"admin,omitempty"`
	IsCustomer      bool       `json:"isCustomer"`
	IsAdmin         bool       `json:"isAdmin"`
	IsOnline        bool       `json:"isOnline"`
	FCMs            []FCM      `json:"fcms,omitempty"`
	Image           string     `json:"image,omitempty"`
	Location        *Location  `json:"location,omitempty"`
	GoogleID        string     `json:"googleId,omitempty"`
	FacebookID      string     `json:"facebookId,omitempty"`
	TwitterID       string     `json:"twitterId,omitempty"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

// FCM is a push notification token bound to a device.
type FCM struct {
	Device string `json:"device"`
	Token  string `json:"token"`
}

// Location is a GeoJSON point; Coordinates holds [longitude, latitude].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Profile is a user with its role record populated.
type Profile struct {
	User
	Customer *profile.Customer `json:"customerProfile,omitempty"`
	Admin    *profile.Admin    `json:"adminProfile,omitempty"`
}

// NewUserInput carries the fields accepted at account creation.
type NewUserInput struct {
	Email    string
	Password string
	Phone    string
	Type     string
}

// UpdateInput carries a partial update. Empty strings and nil pointers/slices
// leave the stored value untouched.
type UpdateInput struct {
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Password    string    `json:"password"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Image       string    `json:"image"`
	Customer    string    `json:"customer"`
	Admin       string    `json:"admin"`
	FCM         *FCM      `json:"fcm"`
	IsOnline    *bool     `json:"isOnline"`
	Coordinates []float64 `json:"coordinates"`
}

// Query selects a single user. Every non-empty field must match.
type Query struct {
	ID         string
	Email      string
	Phone      string
	GoogleID   string
	FacebookID string
	TwitterID  string
}

func (q Query) empty() bool {
	return q == Query{}
}

// SearchInput is the client-facing search request. Page is 1-based; zero
// selects the first page.
type SearchInput struct {
	Type    string
	Exclude string
	Keyword string
	Page    int
	Limit   int
}

// SearchFilter is the normalized filter handed to repositories.
type SearchFilter struct {
	Type        string
	ExcludeType string
	ExcludeID   string
	Keyword     string
	Offset      int
	Limit       int
}

// Page is one page of search results.
type Page struct {
	Data       []User `json:"data"`
	TotalCount int    `json:"totalCount"`
	TotalPages int    `json:"totalPages"`
}

func validType(t string) bool {
	return t == TypeCustomer || t == TypeAdmin
}

func validStatus(s string) bool {
	return s == StatusActive || s == StatusSuspended || s == StatusDeleted
}
