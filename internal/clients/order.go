package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) GetOrder(ctx context.Context, id string) (Order, error) {
	var out Order
	err := oc.c.doJSON(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (oc *OrderClient) ListOrders(ctx context.Context) ([]Order, error) {
	var raw json.RawMessage
	if err := oc.c.doJSON(ctx, http.MethodGet, "/orders", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

func (oc *OrderClient) TrackOrders(ctx context.Context, req TrackOrdersRequest) ([]Order, error) {
	var raw json.RawMessage
	if err := oc.c.doJSON(ctx, http.MethodPost, "/orders/track", nil, req, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

// decodeOrderList accepts a bare array or {"orders": [...]}.
func decodeOrderList(raw json.RawMessage) ([]Order, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []Order
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Orders, nil
}
