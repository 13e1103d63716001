// Package handler provides the JSON response envelope and request
// decoding shared by all HTTP handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/subman/validate"
)

// JSONResponse is the standard JSON response structure.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// JSON writes v wrapped in the standard envelope with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, JSONResponse{Data: v})
}

// JSONWithMeta writes v with additional metadata attached.
func JSONWithMeta(w http.ResponseWriter, status int, v any, meta map[string]any) {
	writeJSON(w, status, JSONResponse{Data: v, Meta: meta})
}

// Error writes err as a JSON error response, mapping the error type to
// an HTTP status: validation errors become 400 with field details,
// HTTPError carries its own status, anything else is a 500.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := &ErrorDetail{Code: "internal_server_error", Message: err.Error()}

	var verrs validate.Errors
	var httpErr HTTPError
	switch {
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		detail.Code = "validation_error"
		detail.Message = "validation failed"
		detail.Details = verrs.Fields()
	case errors.As(err, &httpErr):
		status = httpErr.Code
		detail.Code = httpErr.Key
		detail.Message = httpErr.Error()
	}

	writeJSON(w, status, JSONResponse{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// maxBodyBytes bounds request bodies; webhook payloads and API requests
// are both small.
const maxBodyBytes = 1 << 16

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return ErrBadRequest.WithMessage("failed to read request body")
	}
	if len(body) == 0 {
		return ErrBadRequest.WithMessage("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrBadRequest.WithMessage("invalid JSON payload")
	}
	return nil
}
