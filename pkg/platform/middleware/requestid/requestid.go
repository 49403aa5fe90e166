package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"reviewapp/pkg/requestcontext"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

// Middleware reuses an inbound X-Request-ID or mints a new one, stores it in the
// context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
