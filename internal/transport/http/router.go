package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reviewapp/internal/identity"
	"reviewapp/pkg/platform/httputil"
	"reviewapp/pkg/platform/middleware/metadata"
	"reviewapp/pkg/platform/middleware/requestid"
	"reviewapp/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Register mounts the adapter endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)

	r.Route("/navigation", func(r chi.Router) {
		r.Get("/", h.HandleNavigation)
		r.Post("/push", h.HandlePush)
		r.Post("/pop", h.HandlePop)
		r.Post("/reset", h.HandleReset)
		r.Post("/open", h.HandleOpen)
		r.Get("/snapshot", h.HandleSnapshot)
		r.Put("/snapshot", h.HandleRestore)
	})

	r.Get("/theme", h.HandleTheme)
	r.Put("/theme", h.HandleSetTheme)
	r.Post("/theme/toggle", h.HandleToggleTheme)

	r.Get("/identity", h.HandleIdentity)
	r.Put("/identity", h.HandleSetIdentity)

	if h.catalog != nil {
		r.Route("/api", func(r chi.Router) {
			r.Get("/products", h.HandleListProducts)
			r.Get("/products/{id}", h.HandleGetProduct)
			r.Get("/products/{id}/reviews", h.HandleListReviews)
			r.Post("/products/{id}/reviews", h.HandleSubmitReview)
			r.Get("/wishlist", h.HandleWishlist)
			r.Get("/notifications", h.HandleNotifications)
		})
	}
}

// HandleHealth handles GET /healthz. Any failing check turns the answer
// into a 503 listing each check's state.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			body[name] = "unhealthy"
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	httputil.WriteJSON(w, status, body)
}

// NewRouter wraps h with the standard middleware stack. A non-nil
// metricsHandler is served at /metrics.
func NewRouter(h *Handler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.Middleware)
	r.Use(identity.Middleware)

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	h.Register(r)
	return r
}
