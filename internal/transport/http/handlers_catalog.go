package httptransport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reviewapp/internal/catalog"
	"reviewapp/pkg/platform/httputil"
	"reviewapp/pkg/platform/middleware/metadata"
	"reviewapp/pkg/platform/sentinel"
	"reviewapp/pkg/requestcontext"
)

const defaultPageSize = 20

func pageParams(r *http.Request) (page, size int, err error) {
	q := r.URL.Query()
	page, size = 0, defaultPageSize
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, httputil.BadRequest(errors.New("page must be a non-negative integer"))
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 1 || size > 100 {
			return 0, 0, httputil.BadRequest(errors.New("size must be between 1 and 100"))
		}
	}
	return page, size, nil
}

// catalogError maps client failures onto the envelope. Upstream 404s stay
// 404s; anything else from upstream is a 502 without detail.
func (h *Handler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	attrs := append([]any{
		"request_id", requestcontext.RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	}, metadata.LogAttrs(r.Context())...)
	h.logger.WarnContext(r.Context(), "catalog call failed", attrs...)
	switch {
	case errors.Is(err, catalog.ErrInvalidReview):
		httputil.WriteError(w, httputil.BadRequest(err))
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, err)
	case errors.Is(err, catalog.ErrUpstream):
		httputil.WriteError(w, &httputil.Error{Status: http.StatusBadGateway, Code: httputil.CodeUnavailable, Err: err})
	default:
		httputil.WriteError(w, err)
	}
}

// HandleListProducts handles GET /api/products.
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.catalog.ListProducts(r.Context(), page, size)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGetProduct handles GET /api/products/{id}.
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// HandleListReviews handles GET /api/products/{id}/reviews.
func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.catalog.ListReviews(r.Context(), chi.URLParam(r, "id"), page, size)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleSubmitReview handles POST /api/products/{id}/reviews.
func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[catalog.NewReview](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.ProductID = chi.URLParam(r, "id")
	review, err := h.catalog.SubmitReview(r.Context(), req)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, review)
}

// HandleWishlist handles GET /api/wishlist.
func (h *Handler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Wishlist(r.Context())
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

// HandleNotifications handles GET /api/notifications.
func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Notifications(r.Context())
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}
