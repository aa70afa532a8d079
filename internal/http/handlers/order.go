package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aniayu/storefront-go/internal/http/dto"
)

type OrderHandler struct{ shoppers Shoppers }

func NewOrderHandler(shoppers Shoppers) *OrderHandler { return &OrderHandler{shoppers: shoppers} }

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sh.Orders.List(r.Context()))
}

// GetOrder always answers 200; a missing order comes back with found=false.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sh.Orders.Get(r.Context(), chi.URLParam(r, "orderId")))
}

func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackOrdersRequest
	if !decode(w, r, &req) {
		return
	}
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sh.Orders.Track(r.Context(), req.Email, req.Phone))
}
