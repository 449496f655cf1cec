package profile

import "time"

// Customer is the role extension record of a customer user.
type Customer struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Admin is the role extension record of an admin user.
type Admin struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}
