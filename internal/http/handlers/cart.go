package handlers

import (
	"context"
	"net/http"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/http/dto"
)

// ProductSource prices cart adds; it must not answer from a stale cache.
type ProductSource interface {
	FreshProduct(ctx context.Context, id string) (clients.Product, error)
}

type CartHandler struct {
	shoppers Shoppers
	products ProductSource
}

func NewCartHandler(shoppers Shoppers, products ProductSource) *CartHandler {
	return &CartHandler{shoppers: shoppers, products: products}
}

// StartSession bootstraps the guest session for this browser.
func (h *CartHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionResponse{Ready: true, GuestID: sh.Session.GuestID()})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	if r.URL.Query().Get("refresh") == "true" {
		_ = sh.Cart.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, dto.CartResponse{OK: sh.Cart.Err() == "", Cart: sh.Cart.Snapshot()})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.CartItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		WriteError(w, r, http.StatusBadRequest, "productId is required")
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	product, err := h.products.FreshProduct(r.Context(), req.ProductID)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	done := sh.Cart.AddItem(r.Context(), product, req.Size, req.Quantity)
	writeJSON(w, http.StatusOK, dto.CartResponse{OK: done, Cart: sh.Cart.Snapshot()})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.CartItemRequest
	if !decode(w, r, &req) {
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	done := sh.Cart.UpdateQuantity(r.Context(), req.ProductID, req.Size, req.Quantity)
	writeJSON(w, http.StatusOK, dto.CartResponse{OK: done, Cart: sh.Cart.Snapshot()})
}

// RemoveItem takes productId and size from the query string.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	done := sh.Cart.RemoveItem(r.Context(), q.Get("productId"), q.Get("size"))
	writeJSON(w, http.StatusOK, dto.CartResponse{OK: done, Cart: sh.Cart.Snapshot()})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	done := sh.Cart.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, dto.CartResponse{OK: done, Cart: sh.Cart.Snapshot()})
}
