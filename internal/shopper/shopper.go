// Package shopper holds the per-browser state: guest session, cart, checkout, wishlist
// and order views, all bound to one browser session id.
package shopper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aniayu/storefront-go/internal/cart"
	"github.com/aniayu/storefront-go/internal/checkout"
	"github.com/aniayu/storefront-go/internal/events"
	"github.com/aniayu/storefront-go/internal/localstore"
	"github.com/aniayu/storefront-go/internal/orders"
	"github.com/aniayu/storefront-go/internal/session"
	"github.com/aniayu/storefront-go/internal/wishlist"
)

// Deps are shared by every shopper.
type Deps struct {
	Store    localstore.Store
	Guests   session.GuestStarter
	Cart     cart.Backend
	Checkout checkout.API
	Payments checkout.PaymentBridge
	Orders   orders.API
	Policy   cart.Policy
	Events   events.Publisher
	Logger   *log.Logger
}

type Shopper struct {
	ID       string
	Local    *localstore.Browser
	Session  *session.Bootstrapper
	Cart     *cart.Store
	Checkout *checkout.Flow
	Wishlist *wishlist.Wishlist
	Orders   *orders.Service

	mu       sync.Mutex
	lastSeen time.Time
}

func newShopper(id string, d Deps, now time.Time) *Shopper {
	local := localstore.Bind(d.Store, id)
	sess := session.New(local, d.Guests, d.Logger)

	sh := &Shopper{
		ID:      id,
		Local:   local,
		Session: sess,
		Cart: cart.NewStore(d.Cart, sess,
			cart.WithPolicy(d.Policy), cart.WithEvents(d.Events), cart.WithLogger(d.Logger)),
		Checkout: checkout.NewFlow(d.Checkout, d.Payments, sess, local,
			checkout.WithEvents(d.Events), checkout.WithLogger(d.Logger)),
		Wishlist: wishlist.New(local, d.Logger),
		Orders:   orders.NewService(d.Orders, sess, d.Logger),
		lastSeen: now,
	}
	sess.OnReady(sh.Cart.Refresh)
	return sh
}

// Init bootstraps the guest session, which loads the cart the first time.
func (s *Shopper) Init(ctx context.Context) error {
	return s.Session.Bootstrap(ctx)
}

func (s *Shopper) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Shopper) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
