package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/http/dto"
)

type Catalog interface {
	Products(ctx context.Context, q clients.ProductQuery) (clients.ProductPage, error)
	Product(ctx context.Context, id string) (clients.Product, error)
	FreshProduct(ctx context.Context, id string) (clients.Product, error)
	Related(ctx context.Context, id string) ([]clients.Product, error)
	Categories(ctx context.Context) ([]clients.Category, error)
	Category(ctx context.Context, slug string) (clients.Category, error)
	Homepage(ctx context.Context) (clients.Homepage, error)
	BestSellers(ctx context.Context, limit int) ([]clients.BestSeller, error)
}

type CatalogHandler struct{ c Catalog }

func NewCatalogHandler(c Catalog) *CatalogHandler { return &CatalogHandler{c: c} }

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.c.Products(r.Context(), dto.ParseProductQuery(r.URL.Query()))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.c.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	list, err := h.c.Related(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": list})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.c.Categories(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": list})
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.c.Category(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	hp, err := h.c.Homepage(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

func (h *CatalogHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.c.BestSellers(r.Context(), limit)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bestSellers": list})
}
