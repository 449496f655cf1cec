package plaid

import "time"

// Item is a financial institution connection obtained by exchanging a public token.
type Item struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	ItemID      string    `json:"itemId"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LinkTokenOptions overrides the link token defaults.
type LinkTokenOptions struct {
	ClientName   string   `json:"clientName"`
	Products     []string `json:"products"`
	Language     string   `json:"language"`
	Webhook      string   `json:"webhook"`
	RedirectURI  string   `json:"redirectURI"`
	CountryCodes []string `json:"countryCodes"`
}

// LinkTokenRequest is a fully resolved link token request.
type LinkTokenRequest struct {
	ClientUserID string
	LinkTokenOptions
}

// LinkToken is the handshake token handed to the client-side Link flow.
type LinkToken struct {
	LinkToken  string    `json:"linkToken"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"requestId"`
}

// Exchange is the result of a public token exchange.
type Exchange struct {
	AccessToken string
	ItemID      string
}
