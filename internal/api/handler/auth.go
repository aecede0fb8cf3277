// internal/api/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"

	"fintrack/internal/service"
)

// AuthHandler handles HTTP requests related to accounts.
type AuthHandler struct {
	responder
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles account creation.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User registered", "user_id", result.User.ID)
	h.respondWithJSON(w, http.StatusCreated, result)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles credential checks.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result)
}

// Me returns the caller's profile.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	profile, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, profile)
}
