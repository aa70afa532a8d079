package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/aniayu/storefront-go/internal/model"
)

// Recover turns a handler panic into a JSON 500 tagged with the correlation id.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				cid := GetCorrelationID(r.Context())
				logger.Printf("panic: %s %s: %v (correlation_id=%s)\n%s", r.Method, r.URL.Path, rec, cid, debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse{
					Error:         "internal server error",
					CorrelationID: cid,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
