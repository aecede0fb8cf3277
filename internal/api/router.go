// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/api/handler"
	"fintrack/internal/api/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Transactions  *handler.TransactionHandler
	Authenticator middleware.TokenAuthenticator
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, timeout time.Duration, logger *slog.Logger) http.Handler {
	if timeout <= 0 {
		timeout = handler.DefaultTimeout
	}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)        // Add a request ID to the context
	r.Use(chimiddleware.RealIP)           // Use the real IP address
	r.Use(chimiddleware.Logger)           // Log HTTP requests
	r.Use(chimiddleware.Recoverer)        // Recover from panics and return 500
	r.Use(chimiddleware.Timeout(timeout)) // Bound every request

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	requireAuth := middleware.Authenticator(h.Authenticator, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(requireAuth).Get("/me", h.Auth.Me)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Transactions.List)
			r.Post("/", h.Transactions.Create)
			r.Get("/reports", h.Transactions.Reports)
			r.Get("/{id}", h.Transactions.Get)
			r.Put("/{id}", h.Transactions.Update)
			r.Delete("/{id}", h.Transactions.Delete)
		})
	})

	return r
}
