// Package httptransport is the local JSON surface presentation layers drive.
// Handlers translate HTTP into calls on the navigator, theme engine,
// preferences and catalog client and hold no state of their own.
package httptransport

import (
	"context"
	"log/slog"

	"reviewapp/internal/catalog"
	"reviewapp/internal/navigation"
	"reviewapp/internal/preferences"
	"reviewapp/internal/theme"
)

// Catalog is the subset of the review API client the surface proxies.
type Catalog interface {
	ListProducts(ctx context.Context, page, size int) (catalog.Page[catalog.Product], error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	ListReviews(ctx context.Context, productID string, page, size int) (catalog.Page[catalog.Review], error)
	SubmitReview(ctx context.Context, review catalog.NewReview) (catalog.Review, error)
	Wishlist(ctx context.Context) ([]catalog.WishlistItem, error)
	Notifications(ctx context.Context) ([]catalog.Notification, error)
}

// Identity reports the identity outgoing requests currently carry.
type Identity interface {
	Current() (string, bool)
}

// Handler serves the adapter surface.
type Handler struct {
	nav      *navigation.Navigator
	theme    *theme.Engine
	prefs    *preferences.Service
	identity Identity
	catalog  Catalog
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

// HealthCheck reports a dependency's health for /healthz.
type HealthCheck func(ctx context.Context) error

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCatalog enables the /api proxy routes.
func WithCatalog(c Catalog) Option {
	return func(h *Handler) {
		h.catalog = c
	}
}

// WithIdentity reports the injector's cached identity from GET /identity.
func WithIdentity(i Identity) Option {
	return func(h *Handler) {
		h.identity = i
	}
}

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// New builds a Handler over the session's navigator, theme engine and
// preferences.
func New(nav *navigation.Navigator, engine *theme.Engine, prefs *preferences.Service, opts ...Option) *Handler {
	h := &Handler{
		nav:    nav,
		theme:  engine,
		prefs:  prefs,
		checks: make(map[string]HealthCheck),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}
