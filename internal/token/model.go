package token

import "time"

// UserToken is the single live email-action token of a user.
type UserToken struct {
	UserID   string    `json:"user"`
	Token    string    `json:"token"`
	ExpireAt time.Time `json:"expireAt"`
}

// Expired reports whether the token is no longer usable at now.
func (t UserToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}
