package handlers

import (
	"errors"
	"net/http"

	"github.com/aniayu/storefront-go/internal/checkout"
	"github.com/aniayu/storefront-go/internal/http/dto"
	"github.com/aniayu/storefront-go/internal/payment"
	"github.com/aniayu/storefront-go/internal/shopper"
)

type CheckoutHandler struct{ shoppers Shoppers }

func NewCheckoutHandler(shoppers Shoppers) *CheckoutHandler {
	return &CheckoutHandler{shoppers: shoppers}
}

func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: true, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	var c checkout.Contact
	if !decode(w, r, &c) {
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	sh.Checkout.SetContact(c)
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: true, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var s checkout.Shipping
	if !decode(w, r, &s) {
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	sh.Checkout.SetShipping(s)
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: true, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentMethodRequest
	if !decode(w, r, &req) {
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	if err := sh.Checkout.SelectPayment(req.Method); err != nil {
		WriteError(w, r, http.StatusBadRequest, checkout.ErrNoPaymentMethod.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: true, State: sh.Checkout.State()})
}

// Next reports validation and save failures in the returned state, not as HTTP errors.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	err := sh.Checkout.Next(r.Context())
	if conflict(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: err == nil, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	sh.Checkout.Back()
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{OK: true, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	res, err := sh.Checkout.PlaceOrder(r.Context(), sh.Cart.LineIDs())
	if conflict(w, r, err) {
		return
	}
	h.afterPayment(r, sh, res)
	writeJSON(w, http.StatusOK, dto.PlaceOrderResponse{OK: err == nil, Result: res, State: sh.Checkout.State()})
}

func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentCallbackRequest
	if !decode(w, r, &req) {
		return
	}
	outcome := req.Outcome()
	if outcome == nil {
		WriteError(w, r, http.StatusBadRequest, "unknown payment status")
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	res, err := sh.Checkout.CompletePayment(r.Context(), outcome)
	if conflict(w, r, err) {
		return
	}
	if errors.Is(err, checkout.ErrNoPendingPayment) {
		WriteError(w, r, http.StatusConflict, err.Error())
		return
	}
	h.afterPayment(r, sh, res)
	writeJSON(w, http.StatusOK, dto.PlaceOrderResponse{OK: err == nil, Result: res, State: sh.Checkout.State()})
}

// afterPayment reloads the cart once an order went through; the API empties it.
func (h *CheckoutHandler) afterPayment(r *http.Request, sh *shopper.Shopper, res checkout.Result) {
	if res.Status == payment.StatusConfirmed || res.Status == payment.StatusCaptured {
		_ = sh.Cart.Refresh(r.Context())
	}
}

func conflict(w http.ResponseWriter, r *http.Request, err error) bool {
	if errors.Is(err, checkout.ErrBusy) || errors.Is(err, checkout.ErrLastStep) ||
		errors.Is(err, checkout.ErrNotAtPayment) {
		WriteError(w, r, http.StatusConflict, err.Error())
		return true
	}
	return false
}
