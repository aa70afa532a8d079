package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"

	maxCorrelationIDLen = 128
)

// CorrelationID reuses the caller's id when it looks sane and mints a uuid otherwise.
// The id is echoed on the response and carried in the context to the shop API.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if !validCorrelationID(cid) {
			cid = uuid.NewString()
		}

		w.Header().Set(HeaderCorrelationID, cid)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), cid)))
	})
}

// validCorrelationID keeps ids that are safe to log and forward as a header value.
func validCorrelationID(cid string) bool {
	if cid == "" || len(cid) > maxCorrelationIDLen {
		return false
	}
	for i := 0; i < len(cid); i++ {
		c := cid[i]
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxCorrelationID, cid)
}

func GetCorrelationID(ctx context.Context) string {
	s, _ := ctx.Value(ctxCorrelationID).(string)
	return s
}
