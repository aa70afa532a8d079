// Package cart mirrors the shopper's server-side cart and derives its totals.
package cart

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/events"
)

const (
	msgItemMissing     = "Item is no longer in your cart."
	msgInvalidQuantity = "Quantity must be at least 1."
)

// Backend is the subset of the shop API the store talks to.
type Backend interface {
	GetCart(ctx context.Context) (clients.Cart, error)
	AddToCart(ctx context.Context, req clients.AddToCartRequest) (clients.AddToCartResponse, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (clients.MutationResponse, error)
	RemoveItem(ctx context.Context, itemID string) (clients.MutationResponse, error)
	ClearCart(ctx context.Context) (clients.MutationResponse, error)
}

// Session supplies the guest identity for every call and can renew it.
type Session interface {
	Context(ctx context.Context) context.Context
	Refresh(ctx context.Context) error
	GuestID() string
	LegacySessionID() string
}

type Store struct {
	backend Backend
	session Session
	policy  Policy
	events  events.Publisher
	logger  *log.Logger

	mu      sync.Mutex
	lines   []Line
	totals  Totals
	err     string
	loading bool
}

type Option func(*Store)

func WithPolicy(p Policy) Option { return func(s *Store) { s.policy = p } }

func WithEvents(p events.Publisher) Option { return func(s *Store) { s.events = p } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

func NewStore(backend Backend, session Session, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		session: session,
		events:  events.Nop{},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.totals = ComputeTotals(nil, s.policy)
	return s
}

// call runs fn with the guest id attached, renewing the session once on a 401.
func (s *Store) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return clients.RetryOnUnauthorized(ctx, s.session.Refresh, func(ctx context.Context) error {
		return fn(s.session.Context(ctx))
	})
}

// Refresh reloads the cart from the API.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var c clients.Cart
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.backend.GetCart(ctx)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errmsg.For(err)
		return err
	}
	s.setLinesLocked(coalesce(c.Items))
	return nil
}

// AddItem adds qty of product in size. The price is captured as it is now.
func (s *Store) AddItem(ctx context.Context, product clients.Product, size string, qty int) bool {
	if qty <= 0 {
		s.setErr(msgInvalidQuantity)
		return false
	}
	s.setErr("")

	price := product.Price
	req := clients.AddToCartRequest{
		SessionID: s.session.LegacySessionID(),
		ProductID: product.ID,
		Size:      size,
		Quantity:  qty,
		Price:     &price,
	}
	err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.backend.AddToCart(ctx, req)
		return err
	})
	if err != nil {
		s.setErr(errmsg.For(err))
		return false
	}

	s.emit(ctx, events.CartItemAdded, map[string]any{
		"productId": product.ID,
		"name":      product.Name,
		"size":      size,
		"quantity":  qty,
		"price":     price,
	})
	_ = s.Refresh(ctx)
	return true
}

// UpdateQuantity sets the quantity of the (product, size) line. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, productID, size string, qty int) bool {
	if qty <= 0 {
		return s.RemoveItem(ctx, productID, size)
	}
	s.setErr("")

	line, ok := s.find(productID, size)
	if !ok {
		s.setErr(msgItemMissing)
		return false
	}

	err := s.call(ctx, func(ctx context.Context) error {
		if _, err := s.backend.UpdateItem(ctx, line.ID, qty); err != nil {
			return err
		}
		for _, id := range line.dupIDs {
			if _, err := s.backend.RemoveItem(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.setErr(errmsg.For(err))
		return false
	}

	_ = s.Refresh(ctx)
	return true
}

// RemoveItem drops the (product, size) line. Removing a line that is not there succeeds.
func (s *Store) RemoveItem(ctx context.Context, productID, size string) bool {
	s.setErr("")

	line, ok := s.find(productID, size)
	if !ok {
		return true
	}

	err := s.call(ctx, func(ctx context.Context) error {
		for _, id := range line.ids() {
			if _, err := s.backend.RemoveItem(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.setErr(errmsg.For(err))
		return false
	}

	s.emit(ctx, events.CartItemRemoved, map[string]any{
		"productId": productID,
		"size":      size,
		"quantity":  line.Quantity,
	})
	_ = s.Refresh(ctx)
	return true
}

// ClearCart empties the cart, deleting line by line when the bulk delete is refused.
func (s *Store) ClearCart(ctx context.Context) bool {
	s.setErr("")

	bulkErr := s.call(ctx, func(ctx context.Context) error {
		_, err := s.backend.ClearCart(ctx)
		return err
	})
	if bulkErr != nil {
		s.logger.Printf("cart: bulk clear failed, deleting lines one by one: %v", bulkErr)

		var ids []string
		for _, l := range s.Lines() {
			ids = append(ids, l.ids()...)
		}
		err := s.call(ctx, func(ctx context.Context) error {
			var errs []error
			for _, id := range ids {
				if _, err := s.backend.RemoveItem(ctx, id); err != nil && clients.StatusOf(err) != http.StatusNotFound {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})
		if err != nil {
			s.setErr(errmsg.For(err))
			_ = s.Refresh(ctx)
			return false
		}
	}

	s.mu.Lock()
	s.setLinesLocked(nil)
	s.mu.Unlock()

	s.emit(ctx, events.CartCleared, nil)
	if err := s.Refresh(ctx); err != nil {
		s.mu.Lock()
		s.setLinesLocked(nil)
		s.mu.Unlock()
	}
	return true
}

// ItemQuantity is the quantity of the (product, size) line, 0 when absent.
func (s *Store) ItemQuantity(productID, size string) int {
	if l, ok := s.find(productID, size); ok {
		return l.Quantity
	}
	return 0
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LineIDs returns every server line id, used when placing an order.
func (s *Store) LineIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, l := range s.lines {
		ids = append(ids, l.ids()...)
	}
	return ids
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Lines:   append([]Line{}, s.lines...),
		Totals:  s.totals,
		Err:     s.err,
		Loading: s.loading,
	}
}

func (s *Store) find(productID, size string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ProductID == productID && l.Size == size {
			return l, true
		}
	}
	return Line{}, false
}

// setLinesLocked replaces the lines and recomputes totals. Totals are never set any other way.
func (s *Store) setLinesLocked(lines []Line) {
	s.lines = lines
	s.totals = ComputeTotals(lines, s.policy)
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Store) emit(ctx context.Context, name string, payload any) {
	events.Emit(ctx, s.events, s.logger, events.Event{
		Name:         name,
		PartitionKey: s.session.GuestID(),
		Payload:      payload,
	})
}
