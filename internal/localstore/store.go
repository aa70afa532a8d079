// Package localstore keeps small per-browser values, the server-side stand-in for
// the browser's localStorage.
package localstore

import (
	"context"
	"errors"
)

var ErrNoBrowser = errors.New("localstore: empty browser id")

// Store is keyed by browser session id and then by key.
type Store interface {
	Get(ctx context.Context, browser, key string) (string, bool, error)
	Set(ctx context.Context, browser, key, value string) error
	Delete(ctx context.Context, browser, key string) error
}

// Browser is a Store bound to a single browser session.
type Browser struct {
	store Store
	id    string
}

func Bind(store Store, browserID string) *Browser {
	return &Browser{store: store, id: browserID}
}

func (b *Browser) ID() string { return b.id }

func (b *Browser) Get(ctx context.Context, key string) (string, bool, error) {
	if b.id == "" {
		return "", false, ErrNoBrowser
	}
	return b.store.Get(ctx, b.id, key)
}

func (b *Browser) Set(ctx context.Context, key, value string) error {
	if b.id == "" {
		return ErrNoBrowser
	}
	return b.store.Set(ctx, b.id, key, value)
}

func (b *Browser) Delete(ctx context.Context, key string) error {
	if b.id == "" {
		return ErrNoBrowser
	}
	return b.store.Delete(ctx, b.id, key)
}
