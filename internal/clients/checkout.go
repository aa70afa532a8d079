package clients

import (
	"context"
	"net/http"
)

type CheckoutClient struct{ c *Client }

func NewCheckoutClient(c *Client) *CheckoutClient { return &CheckoutClient{c: c} }

func (cc *CheckoutClient) CreateAddress(ctx context.Context, req AddressRequest) (Address, error) {
	var out Address
	err := cc.c.doJSON(ctx, http.MethodPost, "/addresses", nil, req, &out)
	return out, err
}

func (cc *CheckoutClient) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error) {
	var out CheckoutResponse
	err := cc.c.doJSON(ctx, http.MethodPost, "/checkout", nil, req, &out)
	return out, err
}
