package plaid

import (
	"context"
	"fmt"

	sdk "github.com/plaid/plaid-go/v20/plaid"

	"github.com/linkvault/linkvault_api/internal/config"
)

// Client is the subset of the Plaid API the service relies on.
type Client interface {
	CreateLinkToken(ctx context.Context, req LinkTokenRequest) (LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

// SDKClient calls Plaid through the official SDK.
type SDKClient struct {
	api *sdk.APIClient
}

// NewSDKClient configures the SDK for production or sandbox.
func NewSDKClient(cfg config.PlaidConfig, production bool) *SDKClient {
	conf := sdk.NewConfiguration()
	conf.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	conf.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	if production {
		conf.UseEnvironment(sdk.Production)
	} else {
		conf.UseEnvironment(sdk.Sandbox)
	}
	return &SDKClient{api: sdk.NewAPIClient(conf)}
}

func (c *SDKClient) CreateLinkToken(ctx context.Context, req LinkTokenRequest) (LinkToken, error) {
	countries := make([]sdk.CountryCode, 0, len(req.CountryCodes))
	for _, code := range req.CountryCodes {
		countries = append(countries, sdk.CountryCode(code))
	}
	products := make([]sdk.Products, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, sdk.Products(p))
	}

	body := sdk.NewLinkTokenCreateRequest(req.ClientName, req.Language, countries, sdk.LinkTokenCreateRequestUser{ClientUserId: req.ClientUserID})
	body.SetProducts(products)
	body.SetWebhook(req.Webhook)
	body.SetRedirectUri(req.RedirectURI)

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*body).Execute()
	if err != nil {
		return LinkToken{}, fmt.Errorf("plaid link token create: %w", err)
	}
	return LinkToken{LinkToken: resp.GetLinkToken(), Expiration: resp.GetExpiration(), RequestID: resp.GetRequestId()}, nil
}

func (c *SDKClient) ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error) {
	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).
		ItemPublicTokenExchangeRequest(*sdk.NewItemPublicTokenExchangeRequest(publicToken)).Execute()
	if err != nil {
		return Exchange{}, fmt.Errorf("plaid public token exchange: %w", err)
	}
	return Exchange{AccessToken: resp.GetAccessToken(), ItemID: resp.GetItemId()}, nil
}

func (c *SDKClient) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	resp, _, err := c.api.PlaidApi.ProcessorTokenCreate(ctx).
		ProcessorTokenCreateRequest(*sdk.NewProcessorTokenCreateRequest(accessToken, accountID, processor)).Execute()
	if err != nil {
		return "", fmt.Errorf("plaid processor token create: %w", err)
	}
	return resp.GetProcessorToken(), nil
}
