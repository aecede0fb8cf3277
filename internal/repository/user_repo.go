// internal/repository/user_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser stores a new user. A taken email yields util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, user *domain.User) error
	// GetUserByID retrieves a user by id or returns util.ErrNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetUserByEmail retrieves a user by normalised email or returns util.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
