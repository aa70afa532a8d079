package dto

import (
	"github.com/aniayu/storefront-go/internal/checkout"
	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/payment"
)

type PaymentMethodRequest struct {
	Method clients.PaymentMethod `json:"method"`
}

type CheckoutResponse struct {
	OK    bool           `json:"ok"`
	State checkout.State `json:"state"`
}

type PlaceOrderResponse struct {
	OK     bool            `json:"ok"`
	Result checkout.Result `json:"result"`
	State  checkout.State  `json:"state"`
}

// PaymentCallbackRequest is what the browser reports once the payment widget closes.
type PaymentCallbackRequest struct {
	Status string `json:"status"` // success, failed or cancelled

	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"razorpay_signature,omitempty"`

	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Outcome converts the callback into a payment outcome. Unknown statuses yield nil.
func (r PaymentCallbackRequest) Outcome() payment.Outcome {
	switch r.Status {
	case "success":
		return payment.Success{
			OrderID:   r.RazorpayOrderID,
			PaymentID: r.RazorpayPaymentID,
			Signature: r.RazorpaySignature,
		}
	case "failed":
		return payment.Failed{Code: r.Code, Description: r.Description}
	case "cancelled":
		return payment.Cancelled{}
	default:
		return nil
	}
}
