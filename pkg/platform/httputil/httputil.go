// Package httputil writes JSON responses and the shared error envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"reviewapp/pkg/platform/sentinel"
)

// Error codes used in the "error" field of the envelope.
const (
	CodeBadRequest  = "bad_request"
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal_error"
)

const maxBodyBytes = 1 << 20

// Error is an error with an explicit HTTP status and envelope code.
type Error struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return e.Code + ": " + e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest wraps err as a 400 whose description is err's message.
func BadRequest(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Description: err.Error(), Err: err}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates err into {"error": code, "error_description": ...}.
// Internal errors never expose their description.
func WriteError(w http.ResponseWriter, err error) {
	status, code, desc := http.StatusInternalServerError, CodeInternal, ""

	var httpErr *Error
	switch {
	case errors.As(err, &httpErr):
		status, code, desc = httpErr.Status, httpErr.Code, httpErr.Description
	case errors.Is(err, sentinel.ErrNotFound):
		status, code, desc = http.StatusNotFound, CodeNotFound, err.Error()
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, sentinel.ErrTimeout):
		status, code, desc = http.StatusServiceUnavailable, CodeUnavailable, err.Error()
	}

	body := map[string]string{"error": code}
	if status < http.StatusInternalServerError && desc != "" {
		body["error_description"] = desc
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads a JSON body into T, rejecting unknown fields.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, BadRequest(fmt.Errorf("invalid json body: %w", err))
	}
	return v, nil
}
