package shopper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aniayu/storefront-go/internal/events"
	"github.com/aniayu/storefront-go/internal/localstore"
)

// Registry creates shoppers on first use and forgets them once idle for longer than
// the idle TTL. Persisted browser state outlives eviction.
type Registry struct {
	deps    Deps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	shoppers map[string]*Shopper
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		shoppers: make(map[string]*Shopper),
	}
}

func (r *Registry) Get(browserID string) (*Shopper, error) {
	if browserID == "" {
		return nil, localstore.ErrNoBrowser
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	sh, ok := r.shoppers[browserID]
	if !ok {
		sh = newShopper(browserID, r.deps, now)
		r.shoppers[browserID] = sh
		return sh, nil
	}
	sh.touch(now)
	return sh, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shoppers)
}

// Evict drops shoppers idle longer than the TTL and returns how many went.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sh := range r.shoppers {
		if sh.idleSince().Before(cutoff) {
			delete(r.shoppers, id)
			n++
		}
	}
	return n
}

// Run evicts idle shoppers every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Evict(); n > 0 {
				r.deps.Logger.Printf("shopper: evicted %d idle shoppers", n)
			}
		}
	}
}
