package testutil

import (
	"net/http"

	"reviewapp/pkg/requestcontext"
)

// WithUserID adds a caller identity to the request context, as the identity
// middleware would.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}
