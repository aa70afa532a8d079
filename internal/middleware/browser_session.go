package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CookieBrowserSession identifies one browser. Everything the storefront keeps
// on behalf of a browser (guest id, cart mirror, checkout step, wishlist) is keyed by it.
const CookieBrowserSession = "sf_session"

type ctxKey string

const (
	ctxCorrelationID  ctxKey = "correlation_id"
	ctxBrowserSession ctxKey = "browser_session"
)

// BrowserSession reads the session cookie on /api/* routes, issuing a new one when
// it is missing or malformed, and stores the id in the request context.
func BrowserSession(maxAge time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			id := ""
			if c, err := r.Cookie(CookieBrowserSession); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieBrowserSession,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithBrowserSession(r.Context(), id)))
		})
	}
}

func WithBrowserSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxBrowserSession, id)
}

func GetBrowserSession(ctx context.Context) string {
	if v := ctx.Value(ctxBrowserSession); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
