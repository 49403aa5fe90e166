package httptransport

import (
	"errors"
	"net/http"
	"strings"

	"reviewapp/internal/identity"
	"reviewapp/internal/preferences"
	"reviewapp/internal/theme"
	"reviewapp/pkg/platform/httputil"
	"reviewapp/pkg/platform/middleware/metadata"
	"reviewapp/pkg/requestcontext"
)

type themeResponse struct {
	Mode       theme.Mode `json:"mode"`
	SystemDark bool       `json:"systemDark"`
	Dark       bool       `json:"dark"`
}

type themeRequest struct {
	Mode       *theme.Mode `json:"mode"`
	SystemDark *bool       `json:"systemDark"`
}

type identityResponse struct {
	UserID    string `json:"userId"`
	Injected  string `json:"injected,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Caller    string `json:"caller,omitempty"`
}

type identityRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) themeState() themeResponse {
	return themeResponse{
		Mode:       h.theme.Mode(),
		SystemDark: h.theme.SystemDark(),
		Dark:       h.theme.Resolved(),
	}
}

// HandleTheme handles GET /theme.
func (h *Handler) HandleTheme(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.themeState())
}

// HandleToggleTheme handles POST /theme/toggle.
func (h *Handler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.theme.Toggle(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.themeState())
}

// HandleSetTheme handles PUT /theme. Either field may be omitted.
func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[themeRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.SystemDark != nil {
		h.theme.SetSystemDark(r.Context(), *req.SystemDark)
	}
	if req.Mode != nil {
		if err := h.theme.SetMode(r.Context(), *req.Mode); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, h.themeState())
}

func (h *Handler) identityState(r *http.Request) identityResponse {
	resp := identityResponse{
		UserID: h.prefs.UserID().Value(),
		Caller: requestcontext.UserID(r.Context()),
	}
	if h.identity != nil {
		if id, ok := h.identity.Current(); ok {
			resp.Injected = id
		} else {
			resp.Injected = identity.AnonymousUserID
		}
	}
	resp.Anonymous = resp.UserID == "" || strings.HasPrefix(resp.UserID, preferences.AnonymousPrefix)
	return resp
}

// HandleIdentity handles GET /identity.
func (h *Handler) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.identityState(r))
}

// HandleSetIdentity handles PUT /identity, e.g. after sign-in.
func (h *Handler) HandleSetIdentity(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[identityRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.prefs.SetUserID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, preferences.ErrInvalidUserID) {
			httputil.WriteError(w, httputil.BadRequest(err))
			return
		}
		attrs := append([]any{"request_id", requestcontext.RequestID(r.Context()), "error", err},
			metadata.LogAttrs(r.Context())...)
		h.logger.WarnContext(r.Context(), "identity kept in memory only", attrs...)
	}
	httputil.WriteJSON(w, http.StatusOK, h.identityState(r))
}
