// Package session bootstraps the guest identity a browser uses against the shop API.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/aniayu/storefront-go/internal/clients"
)

const (
	GuestIDKey         = "guest_id"
	LegacySessionIDKey = "ani_ayu_session_id"
)

var ErrNoGuestID = errors.New("guest session returned no id")

// Local is the per-browser key/value store the session persists into.
type Local interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type GuestStarter interface {
	StartGuestSession(ctx context.Context) (clients.GuestSession, error)
}

// Bootstrapper owns one browser's guest identity. Bootstrap runs its body until
// it succeeds once.
type Bootstrapper struct {
	local  Local
	guests GuestStarter
	logger *log.Logger
	now    func() time.Time

	initMu sync.Mutex
	ready  bool

	mu        sync.RWMutex
	guestID   string
	legacyID  string
	onReady   func(ctx context.Context) error
	refreshMu sync.Mutex
}

func New(local Local, guests GuestStarter, logger *log.Logger) *Bootstrapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Bootstrapper{local: local, guests: guests, logger: logger, now: time.Now}
}

// OnReady registers the hook run after the guest id is known, typically the
// initial cart fetch. Its error is logged and otherwise ignored.
func (b *Bootstrapper) OnReady(fn func(ctx context.Context) error) {
	b.mu.Lock()
	b.onReady = fn
	b.mu.Unlock()
}

// Bootstrap makes sure a guest id exists, then fires the ready hook. After the first
// success it is a no-op; a failed attempt leaves the next call free to try again.
// Concurrent callers wait for the running attempt.
func (b *Bootstrapper) Bootstrap(ctx context.Context) error {
	b.initMu.Lock()
	defer b.initMu.Unlock()

	if b.ready {
		return nil
	}
	if err := b.bootstrap(ctx); err != nil {
		return err
	}
	b.ready = true
	return nil
}

func (b *Bootstrapper) bootstrap(ctx context.Context) error {
	if err := b.ensureLegacySessionID(ctx); err != nil {
		b.logger.Printf("session: legacy session id: %v", err)
	}

	id, ok, err := b.local.Get(ctx, GuestIDKey)
	if err != nil {
		return fmt.Errorf("read guest id: %w", err)
	}
	if ok && id != "" {
		b.setGuestID(id)
	} else if err := b.Refresh(ctx); err != nil {
		return err
	}

	b.mu.RLock()
	hook := b.onReady
	b.mu.RUnlock()
	if hook != nil {
		if err := hook(b.Context(ctx)); err != nil {
			b.logger.Printf("session: initial load failed: %v", err)
		}
	}
	return nil
}

// Refresh obtains a brand new guest id and persists it.
func (b *Bootstrapper) Refresh(ctx context.Context) error {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	gs, err := b.guests.StartGuestSession(ctx)
	if err != nil {
		return fmt.Errorf("start guest session: %w", err)
	}
	if gs.GuestID == "" {
		if gs.Message != "" {
			return fmt.Errorf("%w: %s", ErrNoGuestID, gs.Message)
		}
		return ErrNoGuestID
	}
	if err := b.local.Set(ctx, GuestIDKey, gs.GuestID); err != nil {
		return fmt.Errorf("persist guest id: %w", err)
	}
	b.setGuestID(gs.GuestID)
	b.logger.Printf("session: guest session started")
	return nil
}

func (b *Bootstrapper) GuestID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.guestID
}

// LegacySessionID is the older client-generated id still sent with cart adds.
func (b *Bootstrapper) LegacySessionID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.legacyID
}

// Context attaches the current guest id to ctx for outgoing API calls.
func (b *Bootstrapper) Context(ctx context.Context) context.Context {
	if id := b.GuestID(); id != "" {
		return clients.WithGuestID(ctx, id)
	}
	return ctx
}

func (b *Bootstrapper) setGuestID(id string) {
	b.mu.Lock()
	b.guestID = id
	b.mu.Unlock()
}

func (b *Bootstrapper) ensureLegacySessionID(ctx context.Context) error {
	id, ok, err := b.local.Get(ctx, LegacySessionIDKey)
	if err != nil {
		return err
	}
	if !ok || id == "" {
		id = NewLegacySessionID(b.now())
		if err := b.local.Set(ctx, LegacySessionIDKey, id); err != nil {
			return err
		}
	}
	b.mu.Lock()
	b.legacyID = id
	b.mu.Unlock()
	return nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewLegacySessionID returns session_<unix ms>_<9 base36 chars>.
func NewLegacySessionID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
