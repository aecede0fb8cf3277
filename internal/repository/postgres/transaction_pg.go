// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"
)

const transactionColumns = `id, user_id, title, amount, category, date, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	q   repository.DBExecutor
	now func() time.Time
}

// NewTransactionRepository creates a new TransactionRepository on top of q.
func NewTransactionRepository(q repository.DBExecutor) *TransactionRepository {
	return &TransactionRepository{q: q, now: time.Now}
}

// CreateTransaction inserts a new transaction record and reloads it, so tx
// holds exactly what the column stored.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING ` + transactionColumns
	err := r.q.GetContext(ctx, tx, query,
		tx.ID,
		tx.UserID,
		tx.Title,
		tx.Amount,
		tx.Category,
		tx.Date,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByOwner retrieves every transaction of the owner, newest created first.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`
	if err := r.q.SelectContext(ctx, &transactions, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", ownerID, err)
	}
	return transactions, nil
}

// GetByOwner retrieves a single transaction filtered by id and owner together.
func (r *TransactionRepository) GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	if err := r.q.GetContext(ctx, &tx, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &tx, nil
}

// ListByOwnerInRange retrieves the owner's transactions dated inside window.
func (r *TransactionRepository) ListByOwnerInRange(ctx context.Context, ownerID uuid.UUID, window domain.Window) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC`
	if err := r.q.SelectContext(ctx, &transactions, query, ownerID, window.From, window.To); err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s between %s and %s: %w", ownerID, window.From, window.To, err)
	}
	return transactions, nil
}

// ListRecentByOwner retrieves the owner's latest transactions by date, then creation time.
func (r *TransactionRepository) ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2`
	if err := r.q.SelectContext(ctx, &transactions, query, ownerID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent transactions for user %s: %w", ownerID, err)
	}
	return transactions, nil
}

// UpdateByOwner applies the non-nil fields of patch in a single statement.
// Concurrent updates of the same row are last-write-wins.
func (r *TransactionRepository) UpdateByOwner(ctx context.Context, id, ownerID uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error) {
	var tx domain.Transaction
	query := `
		UPDATE transactions SET
			title      = COALESCE($3, title),
			amount     = COALESCE($4, amount),
			category   = COALESCE($5, category),
			date       = COALESCE($6, date),
			updated_at = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + transactionColumns
	err := r.q.GetContext(ctx, &tx, query,
		id,
		ownerID,
		patch.Title,
		patch.Amount,
		patch.Category,
		patch.Date,
		r.now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	return &tx, nil
}

// DeleteByOwner removes a transaction filtered by id and owner together.
func (r *TransactionRepository) DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting transaction %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
