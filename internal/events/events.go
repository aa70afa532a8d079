// Package events publishes storefront analytics events.
package events

import (
	"context"
	"log"
	"sync"
)

const (
	CartItemAdded         = "cart.item_added"
	CartItemRemoved       = "cart.item_removed"
	CartCleared           = "cart.cleared"
	CheckoutStepCompleted = "checkout.step_completed"
	OrderPlaced           = "order.placed"
	PaymentVerified       = "payment.verified"
	PaymentFailed         = "payment.failed"
	PaymentCancelled      = "payment.cancelled"
)

// Event is one analytics fact. PartitionKey groups a shopper's events, usually the guest id.
type Event struct {
	Name         string
	PartitionKey string
	Payload      any
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes ev and only logs a failure; analytics never fail a shopper action.
func Emit(ctx context.Context, p Publisher, logger *log.Logger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil && logger != nil {
		logger.Printf("events: publish %s failed: %v", ev.Name, err)
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names lists the recorded event names in publish order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}
