package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	corsMethods = "GET,POST,PUT,DELETE,OPTIONS"
	// X-Guest-Id lets a page that already holds a guest id from the shop API reuse it.
	corsHeaders = "Content-Type, X-Correlation-Id, X-Guest-Id"
	corsExpose  = "X-Correlation-Id"
	corsMaxAge  = 10 * 60
)

type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func newCORSPolicy(allowOrigins []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allowOrigins))}
	for _, o := range allowOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			p.allowAll = true
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.origins[strings.ToLower(strings.TrimSpace(origin))]
	return ok
}

// CORS answers preflights itself and decorates every other response. The origin is
// reflected rather than "*": the session cookie needs credentials, which rules "*" out.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && policy.allows(origin)
			if origin != "" {
				w.Header().Add("Vary", "Origin")
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", corsExpose)
			}
			next.ServeHTTP(w, r)
		})
	}
}
