package identity

import (
	"net/http"
	"strings"

	"reviewapp/pkg/requestcontext"
)

// Middleware reads X-User-ID from inbound requests into the request context.
// Requests without the header carry AnonymousUserID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			userID = AnonymousUserID
		}
		ctx := requestcontext.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
