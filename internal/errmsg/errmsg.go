// Package errmsg turns client and payment failures into the strings shown to shoppers.
package errmsg

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/aniayu/storefront-go/internal/clients"
)

const (
	Network        = "Network error. Please check your internet connection and try again."
	InvalidRequest = "Invalid request. Please check your information and try again."
	Server         = "Server error. Please try again later."
	Unexpected     = "An unexpected error occurred. Please try again."

	AddressNotFound  = "Address not found. Please select a valid delivery address."
	OrderNotFound    = "Order not found. Please contact support."
	AlreadyProcessed = "This order has already been processed."

	GatewayBadRequest = "Invalid payment request. Please try again."
	GatewayError      = "Payment gateway error. Please try again."
	GatewayServer     = "Payment server error. Please try again later."
	PaymentFailed     = "Payment failed. Please try again."
	ScriptLoadFailed  = "Failed to load payment gateway. Please refresh the page and try again."
	PaymentCancelled  = "Payment was cancelled. You can try again when ready."
)

var (
	// ErrScriptLoad is wrapped by the payment loader when the checkout script cannot be fetched.
	ErrScriptLoad = errors.New("failed to load payment script")
	// ErrCancelled marks a payment the shopper dismissed.
	ErrCancelled = errors.New("payment cancelled by user")
)

// Shown is an error whose text is already written for shoppers, such as a
// rejection message from the API body.
type Shown struct{ Msg string }

func (e *Shown) Error() string { return e.Msg }

// Show wraps msg so the mappers pass it through unchanged.
func Show(msg string) error { return &Shown{Msg: msg} }

// GatewayFailure is a failure reported by the payment widget itself.
type GatewayFailure struct {
	Code        string
	Description string
}

func (e *GatewayFailure) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

var (
	mu     sync.RWMutex
	logger = log.Default()
)

// SetLogger replaces the logger used to record mapped failures.
func SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

func logf(format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf(format, args...)
}

// For maps any failure to a generic shopper-facing message.
func For(err error) string {
	if err == nil {
		return ""
	}
	msg := generic(err)
	logf("error: %s: %v", msg, err)
	return msg
}

// Checkout maps failures of the address and checkout calls.
func Checkout(err error) string {
	if err == nil {
		return ""
	}
	msg := generic(err)
	if clients.StatusOf(err) == http.StatusNotFound {
		msg = AddressNotFound
	}
	logf("checkout error: %s: %v", msg, err)
	return msg
}

// Order maps failures of order lookups.
func Order(err error) string {
	if err == nil {
		return ""
	}
	msg := generic(err)
	if clients.StatusOf(err) == http.StatusNotFound {
		msg = OrderNotFound
	}
	logf("order error: %s: %v", msg, err)
	return msg
}

// Payment maps failures of payment verification, the gateway widget and script loading.
func Payment(err error) string {
	if err == nil {
		return ""
	}

	var msg string
	var gw *GatewayFailure
	switch {
	case errors.As(err, &gw):
		msg = Gateway(gw.Code, gw.Description)
	case errors.Is(err, ErrCancelled):
		msg = PaymentCancelled
	case errors.Is(err, ErrScriptLoad):
		msg = ScriptLoadFailed
	case clients.StatusOf(err) == http.StatusNotFound:
		msg = OrderNotFound
	case clients.StatusOf(err) == http.StatusConflict:
		msg = AlreadyProcessed
	default:
		msg = generic(err)
		if msg == Unexpected {
			msg = PaymentFailed
		}
	}

	logf("payment error: %s: %v", msg, err)
	return msg
}

// Gateway maps a payment gateway error code.
func Gateway(code, description string) string {
	switch code {
	case "BAD_REQUEST_ERROR":
		return GatewayBadRequest
	case "GATEWAY_ERROR":
		return GatewayError
	case "SERVER_ERROR":
		return GatewayServer
	}
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return PaymentFailed
}

func generic(err error) string {
	if clients.IsNetwork(err) {
		return Network
	}

	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status >= 500:
			return Server
		case apiErr.Status >= 400:
			if m := apiErr.BodyMessage(); m != "" {
				return m
			}
			return InvalidRequest
		}
	}

	var shown *Shown
	if errors.As(err, &shown) {
		if m := strings.TrimSpace(shown.Msg); m != "" {
			return m
		}
	}
	// Anything else is internal text (decode failures, wiring errors) and stays in the log.
	return Unexpected
}
