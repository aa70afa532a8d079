package payment

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// Outcome is what the payment widget reports back: Success, Failed or Cancelled.
type Outcome interface {
	isOutcome()
}

type Success struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type Failed struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type Cancelled struct{}

func (Success) isOutcome()   {}
func (Failed) isOutcome()    {}
func (Cancelled) isOutcome() {}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCaptured  Status = "captured"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result is where a payment ended up. Redirect is only set when the shopper should
// move on to the confirmation page.
type Result struct {
	Status   Status `json:"status"`
	OrderID  string `json:"orderId,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SuccessRedirect is the confirmation page for orderID.
func SuccessRedirect(orderID string) string {
	return "/checkout/success?orderId=" + url.QueryEscape(orderID)
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// Options is what the widget needs to open.
type Options struct {
	Key         string          `json:"key"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	OrderID     string          `json:"order_id"`
	Prefill     Prefill         `json:"prefill"`
	Theme       Theme           `json:"theme"`
}

const (
	MerchantName       = "Ani & Ayu"
	PaymentDescription = "Order Payment"
	ThemeColor         = "#F4A261"
	DefaultCurrency    = "INR"
)
