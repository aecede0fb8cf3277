// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
//
// Every operation is scoped to an owner. Lookups by id always filter on (id, owner)
// together, so a record belonging to someone else is reported as util.ErrNotFound.
type TransactionRepository interface {
	// CreateTransaction stores a new transaction.
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	// ListByOwner returns all of the owner's transactions, newest created first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error)
	// GetByOwner returns the transaction with id if ownerID owns it.
	GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error)
	// ListByOwnerInRange returns the owner's transactions dated within window,
	// oldest first (by date, then creation time).
	ListByOwnerInRange(ctx context.Context, ownerID uuid.UUID, window domain.Window) ([]domain.Transaction, error)
	// ListRecentByOwner returns up to limit transactions, latest date first,
	// ties broken by latest creation time.
	ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error)
	// UpdateByOwner applies patch to the owner's transaction and returns the result.
	UpdateByOwner(ctx context.Context, id, ownerID uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error)
	// DeleteByOwner removes the owner's transaction.
	DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) error
}
