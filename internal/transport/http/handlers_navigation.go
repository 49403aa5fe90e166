package httptransport

import (
	"errors"
	"io"
	"net/http"

	"reviewapp/internal/navigation"
	"reviewapp/pkg/platform/httputil"
)

type pathRequest struct {
	Path string `json:"path"`
}

type navigationResponse struct {
	Current string   `json:"current"`
	Kind    string   `json:"kind"`
	Depth   int      `json:"depth"`
	Entries []string `json:"entries"`
}

type popResponse struct {
	navigationResponse
	Popped *string `json:"popped"`
}

type openResponse struct {
	navigationResponse
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

func (h *Handler) navigationState() navigationResponse {
	entries := h.nav.Entries()
	paths := make([]string, len(entries))
	for i, r := range entries {
		paths[i] = navigation.Encode(r)
	}
	current := entries[len(entries)-1]
	return navigationResponse{
		Current: paths[len(paths)-1],
		Kind:    string(current.Kind()),
		Depth:   len(entries),
		Entries: paths,
	}
}

// HandleNavigation handles GET /navigation.
func (h *Handler) HandleNavigation(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.navigationState())
}

// HandlePush handles POST /navigation/push. The route is given as a path and
// must decode; unlike open, a bad path is the caller's error.
func (h *Handler) HandlePush(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[pathRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	route, err := navigation.Decode(req.Path)
	if err == nil {
		err = h.nav.Push(route)
	}
	if err != nil {
		httputil.WriteError(w, httputil.BadRequest(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.navigationState())
}

// HandlePop handles POST /navigation/pop.
func (h *Handler) HandlePop(w http.ResponseWriter, _ *http.Request) {
	resp := popResponse{}
	if popped, ok := h.nav.Pop(); ok {
		path := navigation.Encode(popped)
		resp.Popped = &path
	}
	resp.navigationResponse = h.navigationState()
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /navigation/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, _ *http.Request) {
	h.nav.ResetToRoot()
	httputil.WriteJSON(w, http.StatusOK, h.navigationState())
}

// HandleOpen handles POST /navigation/open, following a deep link. An
// unrecognised link still succeeds and lands on the root screen.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[pathRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := openResponse{}
	if _, err := h.nav.Open(req.Path); err != nil {
		resp.Fallback = true
		resp.Error = err.Error()
	}
	resp.navigationResponse = h.navigationState()
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleSnapshot handles GET /navigation/snapshot.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, _ *http.Request) {
	data, err := h.nav.Snapshot()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRestore handles PUT /navigation/snapshot. Invalid state resets the
// navigator to the root and is reported as a bad request.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteError(w, httputil.BadRequest(err))
		return
	}
	if err := h.nav.Restore(data); err != nil {
		if errors.Is(err, navigation.ErrInvalidSnapshot) {
			httputil.WriteError(w, httputil.BadRequest(err))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.navigationState())
}
