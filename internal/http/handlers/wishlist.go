package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aniayu/storefront-go/internal/http/dto"
	"github.com/aniayu/storefront-go/internal/shopper"
	"github.com/aniayu/storefront-go/internal/wishlist"
)

type WishlistHandler struct{ shoppers Shoppers }

func NewWishlistHandler(shoppers Shoppers) *WishlistHandler {
	return &WishlistHandler{shoppers: shoppers}
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	h.respond(w, r, sh, nil)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	if err := sh.Wishlist.Add(r.Context(), chi.URLParam(r, "productId")); err != nil {
		h.fail(w, r, err)
		return
	}
	saved := true
	h.respond(w, r, sh, &saved)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	if err := sh.Wishlist.Remove(r.Context(), chi.URLParam(r, "productId")); err != nil {
		h.fail(w, r, err)
		return
	}
	saved := false
	h.respond(w, r, sh, &saved)
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sh, ok := currentShopper(w, r, h.shoppers)
	if !ok {
		return
	}
	saved, err := sh.Wishlist.Toggle(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, sh, &saved)
}

func (h *WishlistHandler) respond(w http.ResponseWriter, r *http.Request, sh *shopper.Shopper, saved *bool) {
	ids, err := sh.Wishlist.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WishlistResponse{Items: ids, Count: len(ids), Saved: saved})
}

func (h *WishlistHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, wishlist.ErrEmptyProductID) {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "wishlist unavailable")
}
