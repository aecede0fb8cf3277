// Package memory keeps users and transactions in process memory. It backs
// DATA_BACKEND=memory and the HTTP tests; contents vanish with the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/domain"
	"fintrack/internal/util"
)

// UserStore is an in-memory repository.UserRepository.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// CreateUser stores a copy of user.
func (s *UserStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return fmt.Errorf("email %q: %w", email, util.ErrDuplicateEntry)
	}
	s.byID[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

// GetUserByID returns a copy of the stored user.
func (s *UserStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &user, nil
}

// GetUserByEmail returns a copy of the user registered with email.
func (s *UserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, util.ErrNotFound
	}
	user := s.byID[id]
	return &user, nil
}

// TransactionStore is an in-memory repository.TransactionRepository.
type TransactionStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Transaction
	now  func() time.Time
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byID: make(map[uuid.UUID]domain.Transaction),
		now:  time.Now,
	}
}

// CreateTransaction stores a copy of tx.
func (s *TransactionStore) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[tx.ID]; exists {
		return fmt.Errorf("transaction %s: %w", tx.ID, util.ErrDuplicateEntry)
	}
	s.byID[tx.ID] = *tx
	return nil
}

// ListByOwner returns the owner's transactions, newest created first.
func (s *TransactionStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	txs := s.filter(func(tx *domain.Transaction) bool { return tx.UserID == ownerID })
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}

// GetByOwner returns the transaction only when ownerID owns it.
func (s *TransactionStore) GetByOwner(_ context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byID[id]
	if !ok || tx.UserID != ownerID {
		return nil, util.ErrNotFound
	}
	return &tx, nil
}

// ListByOwnerInRange returns the owner's transactions inside window, oldest first.
func (s *TransactionStore) ListByOwnerInRange(_ context.Context, ownerID uuid.UUID, window domain.Window) ([]domain.Transaction, error) {
	txs := s.filter(func(tx *domain.Transaction) bool {
		return tx.UserID == ownerID && window.Contains(tx.Date)
	})
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	return txs, nil
}

// ListRecentByOwner returns up to limit of the owner's latest transactions.
func (s *TransactionStore) ListRecentByOwner(_ context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	txs := s.filter(func(tx *domain.Transaction) bool { return tx.UserID == ownerID })
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	if limit >= 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// UpdateByOwner applies patch when ownerID owns the transaction.
func (s *TransactionStore) UpdateByOwner(_ context.Context, id, ownerID uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byID[id]
	if !ok || tx.UserID != ownerID {
		return nil, util.ErrNotFound
	}
	patch.Apply(&tx, s.now().UTC())
	s.byID[id] = tx
	return &tx, nil
}

// DeleteByOwner removes the transaction when ownerID owns it.
func (s *TransactionStore) DeleteByOwner(_ context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byID[id]
	if !ok || tx.UserID != ownerID {
		return util.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *TransactionStore) filter(keep func(tx *domain.Transaction) bool) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for _, tx := range s.byID {
		if keep(&tx) {
			out = append(out, tx)
		}
	}
	return out
}
