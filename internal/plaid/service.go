package plaid

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/linkvault/linkvault_api/internal/apperr"
)

const (
	defaultClientName  = "Plaid Test App"
	defaultProduct     = "transactions"
	defaultLanguage    = "en"
	defaultWebhook     = "https://app.com/plaid/webhook"
	defaultRedirectURI = "https://app.page.link/plaid"
	defaultCountry     = "US"
	defaultProcessor   = "alpaca"
)

// Service links users to financial institutions through Plaid.
type Service struct {
	client Client
	repo   Repository
	now    func() time.Time
}

// NewService builds a Plaid service.
func NewService(client Client, repo Repository) *Service {
	return &Service{client: client, repo: repo, now: time.Now}
}

// CreateLinkToken starts a Link session for userID, filling unset options with defaults.
func (s *Service) CreateLinkToken(ctx context.Context, userID string, opts LinkTokenOptions) (LinkToken, error) {
	if userID == "" {
		return LinkToken{}, apperr.BadRequest("Please enter client user id!")
	}
	req := LinkTokenRequest{ClientUserID: userID, LinkTokenOptions: withDefaults(opts)}
	return s.client.CreateLinkToken(ctx, req)
}

// ExchangePublicToken trades a Link public token for an access token and keeps
// the resulting item for userID.
func (s *Service) ExchangePublicToken(ctx context.Context, userID, publicToken string) (Item, error) {
	if publicToken == "" {
		return Item{}, apperr.BadRequest("Please enter public token!")
	}
	ex, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:          uuid.NewString(),
		UserID:      userID,
		ItemID:      ex.ItemID,
		AccessToken: ex.AccessToken,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ProcessorTokenInput selects the access token by stored item or directly.
type ProcessorTokenInput struct {
	ItemID      string `json:"itemId"`
	AccessToken string `json:"accessToken"`
	AccountID   string `json:"accountID"`
	Processor   string `json:"processor"`
}

// CreateProcessorToken issues a processor token for one of the user's accounts.
func (s *Service) CreateProcessorToken(ctx context.Context, userID string, in ProcessorTokenInput) (string, error) {
	if in.AccountID == "" {
		return "", apperr.BadRequest("Please enter account id!")
	}
	accessToken := in.AccessToken
	if in.ItemID != "" {
		item, err := s.repo.FindByItemID(ctx, userID, in.ItemID)
		if errors.Is(err, ErrItemNotFound) {
			return "", apperr.NotFound("Item not found!")
		}
		if err != nil {
			return "", err
		}
		accessToken = item.AccessToken
	}
	if accessToken == "" {
		return "", apperr.BadRequest("Please enter item id or access token!")
	}
	processor := in.Processor
	if processor == "" {
		processor = defaultProcessor
	}
	return s.client.CreateProcessorToken(ctx, accessToken, in.AccountID, processor)
}

// Items lists the user's linked items.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Purge removes every stored item.
func (s *Service) Purge(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func withDefaults(o LinkTokenOptions) LinkTokenOptions {
	if o.ClientName == "" {
		o.ClientName = defaultClientName
	}
	if len(o.Products) == 0 {
		o.Products = []string{defaultProduct}
	}
	if o.Language == "" {
		o.Language = defaultLanguage
	}
	if o.Webhook == "" {
		o.Webhook = defaultWebhook
	}
	if o.RedirectURI == "" {
		o.RedirectURI = defaultRedirectURI
	}
	if len(o.CountryCodes) == 0 {
		o.CountryCodes = []string{defaultCountry}
	}
	return o
}
