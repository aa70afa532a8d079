// Package orders renders order lookups for the confirmation, history and tracking pages.
package orders

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
)

const (
	msgTrackMissing = "Please enter both email and phone number"
	msgTrackFailed  = "Failed to track orders. Please check your details."
)

type API interface {
	GetOrder(ctx context.Context, id string) (clients.Order, error)
	ListOrders(ctx context.Context) ([]clients.Order, error)
	TrackOrders(ctx context.Context, req clients.TrackOrdersRequest) ([]clients.Order, error)
}

type Session interface {
	Context(ctx context.Context) context.Context
}

// Order is an API order with its total and status resolved.
type Order struct {
	clients.Order
	Total    decimal.Decimal `json:"total"`
	State    Status          `json:"state"`
	Progress []Milestone     `json:"progress"`
}

func newOrder(o clients.Order) Order {
	total := decimal.Zero
	switch {
	case o.TotalAmount != nil:
		total = *o.TotalAmount
	case o.Amount != nil:
		total = *o.Amount
	}
	st := ParseStatus(o.Status)
	return Order{Order: o, Total: total, State: st, Progress: st.Progress()}
}

// View is a single-order page. A lookup that fails shows the not-found state.
type View struct {
	Found   bool   `json:"found"`
	Order   *Order `json:"order,omitempty"`
	Message string `json:"message,omitempty"`
}

type ListView struct {
	Orders  []Order `json:"orders"`
	Message string  `json:"message,omitempty"`
}

type Service struct {
	api     API
	session Session
	logger  *log.Logger
}

func NewService(api API, session Session, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{api: api, session: session, logger: logger}
}

func (s *Service) Get(ctx context.Context, id string) View {
	id = strings.TrimSpace(id)
	if id == "" || id == "undefined" || id == "null" {
		return View{Message: errmsg.OrderNotFound}
	}

	o, err := s.api.GetOrder(s.session.Context(ctx), id)
	if err != nil {
		return View{Message: errmsg.Order(err)}
	}
	if o.ID == "" {
		return View{Message: errmsg.OrderNotFound}
	}
	order := newOrder(o)
	return View{Found: true, Order: &order}
}

func (s *Service) List(ctx context.Context) ListView {
	list, err := s.api.ListOrders(s.session.Context(ctx))
	if err != nil {
		return ListView{Orders: []Order{}, Message: errmsg.For(err)}
	}
	return ListView{Orders: convert(list)}
}

func (s *Service) Track(ctx context.Context, email, phone string) ListView {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" || phone == "" {
		return ListView{Orders: []Order{}, Message: msgTrackMissing}
	}

	list, err := s.api.TrackOrders(s.session.Context(ctx), clients.TrackOrdersRequest{Email: email, Phone: phone})
	if err != nil {
		msg := msgTrackFailed
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.BodyMessage() != "" {
			msg = apiErr.BodyMessage()
		}
		s.logger.Printf("orders: track failed: %v", err)
		return ListView{Orders: []Order{}, Message: msg}
	}
	return ListView{Orders: convert(list)}
}

func convert(list []clients.Order) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		out = append(out, newOrder(o))
	}
	return out
}
