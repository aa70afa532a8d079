package clients

import (
	"context"
	"net/http"
	"net/url"
)

type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

func (cc *CartClient) GetCart(ctx context.Context) (Cart, error) {
	var out Cart
	err := cc.c.doJSON(ctx, http.MethodGet, "/cart", nil, nil, &out)
	return out, err
}

func (cc *CartClient) AddToCart(ctx context.Context, req AddToCartRequest) (AddToCartResponse, error) {
	var out AddToCartResponse
	err := cc.c.doJSON(ctx, http.MethodPost, "/cart/add", nil, req, &out)
	return out, err
}

func (cc *CartClient) UpdateItem(ctx context.Context, itemID string, quantity int) (MutationResponse, error) {
	var out MutationResponse
	in := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	err := cc.c.doJSON(ctx, http.MethodPut, "/cart/item/"+url.PathEscape(itemID), nil, in, &out)
	return out, err
}

func (cc *CartClient) RemoveItem(ctx context.Context, itemID string) (MutationResponse, error) {
	var out MutationResponse
	err := cc.c.doJSON(ctx, http.MethodDelete, "/cart/item/"+url.PathEscape(itemID), nil, nil, &out)
	return out, err
}

func (cc *CartClient) ClearCart(ctx context.Context) (MutationResponse, error) {
	var out MutationResponse
	err := cc.c.doJSON(ctx, http.MethodDelete, "/cart", nil, nil, &out)
	return out, err
}
