package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewapp/pkg/platform/sentinel"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, CodeInternal, body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, BadRequest(errors.New("invalid input")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, CodeBadRequest, body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("sentinels map to statuses", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("product p-1: %w", sentinel.ErrNotFound))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeNotFound, decode(t, w)["error"])

		w = httptest.NewRecorder()
		WriteError(w, fmt.Errorf("redis: %w", sentinel.ErrUnavailable))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, decode(t, w), "error_description")
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Path string `json:"path"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"path":"wishlist"}`))
	got, err := DecodeJSON[payload](r)
	require.NoError(t, err)
	assert.Equal(t, "wishlist", got.Path)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"route":"wishlist"}`))
	_, err = DecodeJSON[payload](r)
	var httpErr *Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}
