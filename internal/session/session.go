// Package session signs and verifies the bearer tokens handed to clients
// after registration or login.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// actionAudience marks single-use email action tokens. Parse refuses them.
const actionAudience = "email-action"

// Claims identify the account a token was issued to.
type Claims struct {
	UserID string `json:"_id"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Subject is the minimal view of an account needed to mint a token.
type Subject struct {
	ID    string
	Email string
	Phone string
	Type  string
}

// Issuer mints HS256 tokens with a fixed secret and lifetime.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. A non-positive ttl produces tokens without expiry.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Sign issues a session token for the subject.
func (i *Issuer) Sign(sub Subject) (string, error) {
	return i.sign(sub, nil)
}

// SignAction issues a token for emailed links. It cannot be used as a session.
func (i *Issuer) SignAction(sub Subject) (string, error) {
	return i.sign(sub, jwt.ClaimStrings{actionAudience})
}

func (i *Issuer) sign(sub Subject, audience jwt.ClaimStrings) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		UserID: sub.ID,
		Email:  sub.Email,
		Phone:  sub.Phone,
		Type:   sub.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  sub.ID,
			Issuer:   i.issuer,
			Audience: audience,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies a session token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return nil, err
	}
	for _, aud := range claims.Audience {
		if aud == actionAudience {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// ParseAction verifies a token minted by SignAction.
func (i *Issuer) ParseAction(tokenString string) (*Claims, error) {
	return i.parse(tokenString, jwt.WithAudience(actionAudience))
}

func (i *Issuer) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
