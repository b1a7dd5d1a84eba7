package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/pkg/logger"
)

// ErrorResponse is the structured JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeInternalError = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

// FromError translates a service error into an HTTP response. Validation,
// authorization and conflict errors carry their message to the caller;
// anything else is logged with the request context and surfaced as a
// generic 500.
func FromError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrConflict):
		// The front-end treats duplicate submissions as a user-correctable
		// 400, matching the agreement flow's contract.
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, err.Error())
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		InternalError(w, "internal server error")
	}
}
