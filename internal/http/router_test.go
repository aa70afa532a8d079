package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniayu/storefront-go/internal/catalog"
	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/config"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/localstore"
	"github.com/aniayu/storefront-go/internal/middleware"
	"github.com/aniayu/storefront-go/internal/payment"
	"github.com/aniayu/storefront-go/internal/shopper"
)

func init() {
	errmsg.SetLogger(log.New(io.Discard, "", 0))
}

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
}

// shopStub is a small in-memory shop API.
type shopStub struct {
	mu             sync.Mutex
	lines          []clients.CartItem
	requests       []recordedRequest
	productsStatus int
}

func (s *shopStub) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, RawQuery: r.URL.RawQuery, Header: r.Header.Clone()})
}

func (s *shopStub) last(method, path string) (recordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == method && s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func (s *shopStub) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /guest/session", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"success": true, "guestId": "guest-1"})
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"items": s.lines})
	})
	mux.HandleFunc("POST /cart/add", func(w http.ResponseWriter, r *http.Request) {
		var req clients.AddToCartRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.lines {
			if s.lines[i].ProductID == req.ProductID && s.lines[i].Size == req.Size {
				s.lines[i].Quantity += req.Quantity
				reply(w, http.StatusOK, map[string]any{"success": true})
				return
			}
		}
		s.lines = append(s.lines, clients.CartItem{
			ID: "line-" + req.ProductID + "-" + req.Size, ProductID: req.ProductID, Size: req.Size,
			Quantity: req.Quantity, Price: *req.Price, Name: "Kurta",
		})
		reply(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("DELETE /cart", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lines = nil
		s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if s.productsStatus != 0 {
			reply(w, s.productsStatus, map[string]any{"message": "down"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"products": []any{}, "pagination": map[string]any{"page": 1}})
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, clients.Product{ID: r.PathValue("id"), Name: "Kurta", Price: decimal.NewFromInt(500)})
	})
	mux.HandleFunc("POST /addresses", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusCreated, map[string]any{"id": "addr-1"})
	})
	mux.HandleFunc("POST /checkout", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lines = nil
		s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true, "orderId": "abc123", "requiresPayment": false, "paymentMethod": "cod"})
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]any{"message": "Order not found"})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	})
}

type testEnv struct {
	shop   *shopStub
	server *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	shop := &shopStub{}
	upstream := httptest.NewServer(shop.handler())
	t.Cleanup(upstream.Close)

	logger := log.New(io.Discard, "", 0)
	base := clients.NewClient("shop", upstream.URL, &http.Client{Timeout: 5 * time.Second}, clients.BreakerSettings{MaxFailures: 100})
	checkoutClient := clients.NewCheckoutClient(base)

	registry := shopper.NewRegistry(shopper.Deps{
		Store:    localstore.NewMemory(),
		Guests:   clients.NewGuestClient(base),
		Cart:     clients.NewCartClient(base),
		Checkout: checkoutClient,
		Payments: payment.NewBridge(clients.NewPaymentClient(base), payment.NewScriptLoader(upstream.URL+"/checkout.js", nil), payment.Config{}, payment.WithLogger(logger)),
		Orders:   clients.NewOrderClient(base),
		Logger:   logger,
	}, time.Minute)

	router := NewRouter(Deps{
		Logger:       logger,
		Cfg:          config.Config{CORSAllowOrigins: []string{"*"}, BrowserStateTTL: time.Hour},
		Shoppers:     registry,
		Catalog:      catalog.NewService(clients.NewCatalogClient(base), nil, logger),
		HealthProbes: []clients.HealthProbe{{Name: "shop", Client: base, Path: "/health"}},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{shop: shop, server: srv, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestHealthRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "storefront", body["service"])
	assert.Empty(t, resp.Header.Get("Set-Cookie"), "no browser cookie outside /api")
}

func TestHealthUpstreams(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health/upstreams", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	upstream := body["upstream"].([]any)
	require.Len(t, upstream, 1)
	assert.Equal(t, true, upstream[0].(map[string]any)["ok"])
}

func TestSessionCookieAndGuestHeader(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/session", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "guest-1", body["guestId"])
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CookieBrowserSession {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	got, ok := env.shop.last(http.MethodGet, "/cart")
	require.True(t, ok, "bootstrap loads the cart")
	assert.Equal(t, "guest-1", got.Header.Get(clients.HeaderGuestID))
	assert.NotEmpty(t, got.Header.Get(middleware.HeaderCorrelationID))
}

func TestAddItemTwiceKeepsOneLine(t *testing.T) {
	env := newTestEnv(t)
	item := map[string]any{"productId": "p1", "size": "M", "quantity": 1}

	_, _ = env.do(t, http.MethodPost, "/api/cart/items", item)
	item["quantity"] = 2
	resp, body := env.do(t, http.MethodPost, "/api/cart/items", item)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	cart := body["cart"].(map[string]any)
	lines := cart["items"].([]any)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 3, lines[0].(map[string]any)["quantity"])
	totals := cart["totals"].(map[string]any)
	assert.EqualValues(t, 3, totals["totalItems"])
	assert.Equal(t, "1500", totals["subtotal"])
}

func TestClearCartEmptiesLines(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "size": "M", "quantity": 1})

	_, body := env.do(t, http.MethodDelete, "/api/cart", nil)

	assert.Equal(t, true, body["ok"])
	assert.Empty(t, body["cart"].(map[string]any)["items"])
}

func TestCheckoutCashOnDelivery(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "size": "M", "quantity": 1})

	_, _ = env.do(t, http.MethodPut, "/api/checkout/contact", map[string]any{"email": "a@b.c", "phone": "98765"})
	_, body := env.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, true, body["ok"], body)
	_, _ = env.do(t, http.MethodPut, "/api/checkout/shipping", map[string]any{
		"firstName": "Asha", "lastName": "Rao", "address": "12 MG Road", "city": "Pune", "state": "MH", "postalCode": "411001",
	})
	_, body = env.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, true, body["ok"], body)
	assert.Equal(t, "addr-1", body["state"].(map[string]any)["addressId"])

	resp, _ := env.do(t, http.MethodPut, "/api/checkout/payment-method", map[string]any{"method": "cod"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = env.do(t, http.MethodPost, "/api/checkout/place", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, "confirmed", result["status"])
	assert.Equal(t, "/checkout/success?orderId=abc123", result["redirect"])

	_, cartBody := env.do(t, http.MethodGet, "/api/cart", nil)
	assert.Empty(t, cartBody["cart"].(map[string]any)["items"])
}

func TestCheckoutContactValidation(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.do(t, http.MethodPut, "/api/checkout/contact", map[string]any{"email": "", "phone": "98765"})

	resp, body := env.do(t, http.MethodPost, "/api/checkout/next", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
	state := body["state"].(map[string]any)
	assert.Equal(t, "contact", state["step"])
	assert.Equal(t, "Please fill in all contact details.", state["error"])
}

func TestCheckoutCallbackWithoutPendingPayment(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/checkout/payment/callback", map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/checkout/payment/callback", map[string]any{"status": "weird"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductsQueryForwarded(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/products?category=kurta&sizes=S,M&featured=true", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, ok := env.shop.last(http.MethodGet, "/products")
	require.True(t, ok)
	assert.Contains(t, got.RawQuery, "categoryName=kurta")
	assert.Contains(t, got.RawQuery, "sizes=S&sizes=M")
	assert.Contains(t, got.RawQuery, "featured=true")
}

func TestUpstreamServerErrorIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.shop.productsStatus = http.StatusServiceUnavailable

	resp, body := env.do(t, http.MethodGet, "/api/products", nil)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, errmsg.Server, body["error"])
	assert.NotEmpty(t, body["correlationId"])
}

func TestOrderNotFoundIsAView(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/orders/missing", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["found"])
	assert.Equal(t, errmsg.OrderNotFound, body["message"])
}

func TestWishlistToggle(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/wishlist/p1/toggle", nil)
	assert.Equal(t, true, body["saved"])
	assert.EqualValues(t, 1, body["count"])

	_, body = env.do(t, http.MethodPost, "/api/wishlist/p1/toggle", nil)
	assert.Equal(t, false, body["saved"])
	assert.EqualValues(t, 0, body["count"])
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/api/cart", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://shop.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "PUT"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), "X-Guest-Id"))
}
