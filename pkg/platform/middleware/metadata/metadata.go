// Package metadata records who is driving the adapter surface: the client
// address and user agent, for request logs.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type (
	clientIPKey  struct{}
	userAgentKey struct{}
)

// Middleware stores the client address and User-Agent in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClient(r.Context(), ClientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClient injects client metadata into ctx.
func WithClient(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIPFrom(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgentFrom(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// LogAttrs returns the metadata as slog key/value pairs.
func LogAttrs(ctx context.Context) []any {
	return []any{"client_ip", ClientIPFrom(ctx), "client", Describe(UserAgentFrom(ctx))}
}

// Describe condenses a User-Agent into "browser/os", with a "bot" or
// "mobile" suffix where it applies. Native clients that are not browsers
// keep their raw product token.
func Describe(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		return name + " (bot)"
	}
	name, _ := ua.Browser()
	if name == "" {
		name = ua.Platform()
	}
	desc := name
	if os := ua.OS(); os != "" {
		desc += "/" + os
	}
	if ua.Mobile() {
		desc += " (mobile)"
	}
	return desc
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
