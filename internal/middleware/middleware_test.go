package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniayu/storefront-go/internal/model"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	tests := map[string]struct {
		allow      []string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		"preflight allowed":      {allow: []string{"https://shop.example"}, method: http.MethodOptions, origin: "https://shop.example", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://shop.example"},
		"preflight case folded":  {allow: []string{"https://Shop.Example"}, method: http.MethodOptions, origin: "https://shop.example", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://shop.example"},
		"preflight wildcard":     {allow: []string{"*"}, method: http.MethodOptions, origin: "https://any.example", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://any.example"},
		"preflight refused":      {allow: []string{"https://shop.example"}, method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusForbidden},
		"simple request allowed": {allow: []string{"https://shop.example"}, method: http.MethodGet, origin: "https://shop.example", wantStatus: http.StatusOK, wantOrigin: "https://shop.example"},
		"simple request refused": {allow: []string{"https://shop.example"}, method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		"no origin":              {allow: []string{"*"}, method: http.MethodGet, wantStatus: http.StatusOK},
		"plain options passes":   {allow: []string{"*"}, method: http.MethodOptions, origin: "https://shop.example", wantStatus: http.StatusOK, wantOrigin: "https://shop.example"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/cart", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()

			CORS(tc.allow)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/checkout/contact", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()

	CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

	h := rec.Header()
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, h.Get("Access-Control-Allow-Headers"), "X-Guest-Id")
	assert.Contains(t, h.Get("Access-Control-Allow-Headers"), HeaderCorrelationID)
	assert.Equal(t, "600", h.Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", h.Get("Vary"))
}

func TestCORSExposesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()

	CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, HeaderCorrelationID, rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCorrelationID(t *testing.T) {
	tests := map[string]struct {
		incoming string
		keep     bool
	}{
		"reused":          {incoming: "req-123", keep: true},
		"missing":         {incoming: "", keep: false},
		"too long":        {incoming: strings.Repeat("a", maxCorrelationIDLen+1), keep: false},
		"has space":       {incoming: "req 123", keep: false},
		"has control":     {incoming: "req\x01", keep: false},
		"at length limit": {incoming: strings.Repeat("b", maxCorrelationIDLen), keep: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var seen string
			h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetCorrelationID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(HeaderCorrelationID, tc.incoming)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(HeaderCorrelationID))
			if tc.keep {
				assert.Equal(t, tc.incoming, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestRecoverWritesJSONError(t *testing.T) {
	var logs bytes.Buffer
	h := CorrelationID(Recover(log.New(&logs, "", 0))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", nil)
	req.Header.Set(HeaderCorrelationID, "cid-1")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "cid-1", body.CorrelationID)
	assert.Contains(t, logs.String(), "POST /api/cart/items: boom")
}

func TestRecoverReraisesAbort(t *testing.T) {
	h := Recover(log.New(&bytes.Buffer{}, "", 0))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
