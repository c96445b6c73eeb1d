package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/svsu-dev/samadhan/internal/pkg/logger"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code. The data is
// serialized and Content-Type is set automatically.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// BadRequest writes a 400 error with the violated rule.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes the portal's canonical 404 payload.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "API endpoint not found")
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic retry message to the client (never leak internals).
func InternalError(w http.ResponseWriter, endpoint string, err error) {
	logger.Error("internal error", "endpoint", endpoint, "error", err)
	Error(w, http.StatusInternalServerError, "Internal server error")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON request body")
		return false
	}
	return true
}
