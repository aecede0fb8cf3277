// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/domain"
	"fintrack/internal/events"
	"fintrack/internal/repository"
	"fintrack/internal/util"
)

// LedgerService defines the interface for transaction ledger business logic.
// Every method is scoped to ownerID; someone else's transaction is reported as
// util.ErrTransactionNotFound.
type LedgerService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error)
	// Create requires every field of fields to be set.
	Create(ctx context.Context, ownerID uuid.UUID, fields domain.TransactionPatch) (*domain.Transaction, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	transactionRepo repository.TransactionRepository
	publisher       events.Publisher
	logger          *slog.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(transactionRepo repository.TransactionRepository, publisher events.Publisher, logger *slog.Logger) LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ledgerService{
		transactionRepo: transactionRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

func (s *ledgerService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	txs, err := s.transactionRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *ledgerService) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFound("get transaction", id, err)
	}
	return tx, nil
}

func (s *ledgerService) Create(ctx context.Context, ownerID uuid.UUID, fields domain.TransactionPatch) (*domain.Transaction, error) {
	if fields.Title == nil || fields.Amount == nil || fields.Category == nil || fields.Date == nil {
		return nil, fmt.Errorf("%w: title, amount, category and date are required", util.ErrInvalidInput)
	}
	if err := validateLabels(fields); err != nil {
		return nil, err
	}

	tx := domain.NewTransaction(ownerID, strings.TrimSpace(*fields.Title), *fields.Amount,
		strings.TrimSpace(*fields.Category), *fields.Date)
	if err := s.transactionRepo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, events.TransactionCreated, tx.ID, ownerID)
	return tx, nil
}

// Update applies patch. An empty patch returns the current record unchanged.
func (s *ledgerService) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, ownerID, id)
	}
	if err := validateLabels(patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		patch.Category = &category
	}

	tx, err := s.transactionRepo.UpdateByOwner(ctx, id, ownerID, patch)
	if err != nil {
		return nil, notFound("update transaction", id, err)
	}

	s.publish(ctx, events.TransactionUpdated, tx.ID, ownerID)
	return tx, nil
}

func (s *ledgerService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.transactionRepo.DeleteByOwner(ctx, id, ownerID); err != nil {
		return notFound("delete transaction", id, err)
	}

	s.publish(ctx, events.TransactionDeleted, id, ownerID)
	return nil
}

// publish never fails the caller; the ledger write has already happened.
func (s *ledgerService) publish(ctx context.Context, typ events.Type, id, ownerID uuid.UUID) {
	if err := s.publisher.Publish(ctx, events.NewEvent(typ, id, ownerID)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			"type", typ,
			"transaction_id", id,
			"error", err)
	}
}

func validateLabels(p domain.TransactionPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be blank", util.ErrInvalidInput)
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return fmt.Errorf("%w: category cannot be blank", util.ErrInvalidInput)
	}
	return nil
}

func notFound(op string, id uuid.UUID, err error) error {
	if errors.Is(err, util.ErrNotFound) {
		return util.ErrTransactionNotFound
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}
