// Package wishlist keeps the product ids a browser has saved for later.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
)

const StorageKey = "ani_ayu_wishlist"

var ErrEmptyProductID = errors.New("wishlist: empty product id")

type Local interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Wishlist struct {
	local  Local
	logger *log.Logger
	mu     sync.Mutex
}

func New(local Local, logger *log.Logger) *Wishlist {
	if logger == nil {
		logger = log.Default()
	}
	return &Wishlist{local: local, logger: logger}
}

// List returns saved ids, oldest first. Unreadable stored data counts as an empty list.
func (w *Wishlist) List(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

func (w *Wishlist) Count(ctx context.Context) (int, error) {
	ids, err := w.List(ctx)
	return len(ids), err
}

func (w *Wishlist) Contains(ctx context.Context, productID string) (bool, error) {
	ids, err := w.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, strings.TrimSpace(productID)), nil
}

// Add saves productID. Adding an id twice keeps one entry.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	_, err := w.update(ctx, productID, func(ids []string, id string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
	return err
}

func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	_, err := w.update(ctx, productID, remove)
	return err
}

// Toggle adds productID when absent and removes it otherwise. It reports whether the id is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	var saved bool
	_, err := w.update(ctx, productID, func(ids []string, id string) []string {
		if slices.Contains(ids, id) {
			return remove(ids, id)
		}
		saved = true
		return append(ids, id)
	})
	return saved, err
}

func (w *Wishlist) update(ctx context.Context, productID string, fn func([]string, string) []string) ([]string, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, ErrEmptyProductID
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ids, err := w.load(ctx)
	if err != nil {
		return nil, err
	}
	ids = fn(ids, id)

	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal wishlist: %w", err)
	}
	if err := w.local.Set(ctx, StorageKey, string(raw)); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	return ids, nil
}

func (w *Wishlist) load(ctx context.Context) ([]string, error) {
	raw, ok, err := w.local.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	ids := []string{}
	if !ok || raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		w.logger.Printf("wishlist: discarding unreadable data: %v", err)
		return []string{}, nil
	}
	return ids, nil
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
