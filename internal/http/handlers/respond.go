package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/middleware"
	"github.com/aniayu/storefront-go/internal/model"
	"github.com/aniayu/storefront-go/internal/shopper"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

// writeUpstreamError reports a failed shop API call. Transport failures and 5xx become
// 502; client errors keep their status.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	msg := errmsg.For(err)
	var apiErr *clients.APIError
	switch {
	case clients.IsNetwork(err):
		WriteError(w, r, http.StatusBadGateway, msg)
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		WriteError(w, r, apiErr.Status, msg)
	case errors.As(err, &apiErr):
		WriteError(w, r, http.StatusBadGateway, msg)
	default:
		WriteError(w, r, http.StatusInternalServerError, msg)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type Shoppers interface {
	Get(browserID string) (*shopper.Shopper, error)
}

// currentShopper resolves the shopper behind the browser cookie and makes sure its
// guest session is up. It writes the error response itself when it returns false.
func currentShopper(w http.ResponseWriter, r *http.Request, shoppers Shoppers) (*shopper.Shopper, bool) {
	sh, err := shoppers.Get(middleware.GetBrowserSession(r.Context()))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "missing browser session")
		return nil, false
	}
	if err := sh.Init(r.Context()); err != nil {
		writeUpstreamError(w, r, err)
		return nil, false
	}
	return sh, true
}
