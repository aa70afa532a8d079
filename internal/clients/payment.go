package clients

import (
	"context"
	"net/http"
)

type PaymentClient struct{ c *Client }

func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

func (pc *PaymentClient) CreateOrder(ctx context.Context, req CreatePaymentOrderRequest) (CreatePaymentOrderResponse, error) {
	var out CreatePaymentOrderResponse
	err := pc.c.doJSON(ctx, http.MethodPost, "/payments/create-order", nil, req, &out)
	return out, err
}

func (pc *PaymentClient) Verify(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error) {
	var out VerifyPaymentResponse
	err := pc.c.doJSON(ctx, http.MethodPost, "/payments/verify", nil, req, &out)
	return out, err
}
