package clients

import (
	"context"
	"net/http"
)

type guestCtxKey struct{}

// WithGuestID attaches the guest identity sent as X-Guest-Id on every request made with ctx.
func WithGuestID(ctx context.Context, guestID string) context.Context {
	return context.WithValue(ctx, guestCtxKey{}, guestID)
}

func GuestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(guestCtxKey{}).(string); ok {
		return v
	}
	return ""
}

type GuestSession struct {
	Success bool   `json:"success"`
	GuestID string `json:"guestId"`
	Message string `json:"message"`
}

type GuestClient struct{ c *Client }

func NewGuestClient(c *Client) *GuestClient { return &GuestClient{c: c} }

func (gc *GuestClient) StartGuestSession(ctx context.Context) (GuestSession, error) {
	var out GuestSession
	err := gc.c.doJSON(ctx, http.MethodPost, "/guest/session", nil, struct{}{}, &out)
	return out, err
}
