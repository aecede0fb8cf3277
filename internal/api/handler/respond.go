// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"fintrack/internal/api/middleware"
	"fintrack/internal/util" // For custom errors
)

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// responder holds the response helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h responder) respondWithMessage(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"message": message})
}

// Helper function to send error responses.
func (h responder) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	message := "Server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error() // Use the error message directly for invalid input
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusBadRequest
		message = "User already exists"
	case util.IsError(err, util.ErrInvalidCredentials):
		statusCode = http.StatusBadRequest
		message = "Invalid credentials"
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Not authorized"
	case util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = "Transaction not found"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error",
			"error", err,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)
	}

	h.respondWithMessage(w, statusCode, message)
}

// decodeJSON reads a JSON body into dst. Any failure is util.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", util.ErrInvalidInput, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return nil
}

// currentUser returns the id placed in the context by middleware.Authenticator.
func currentUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, util.ErrUnauthorized
	}
	return userID, nil
}
