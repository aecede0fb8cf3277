// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// AmountScale is the number of decimal places an amount is stored with.
const AmountScale = 4

// Transaction is a single income (positive amount) or expense (negative amount) record.
type Transaction struct {
	ID        uuid.UUID       `db:"id" json:"_id"`
	UserID    uuid.UUID       `db:"user_id" json:"user"` // Owner, immutable after creation
	Title     string          `db:"title" json:"title"`
	Amount    decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(20, AmountScale) in DB
	Category  string          `db:"category" json:"category"`
	Date      Date            `db:"date" json:"date"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// NewTransaction creates a new Transaction owned by userID.
func NewTransaction(userID uuid.UUID, title string, amount decimal.Decimal, category string, date Date) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Amount:    amount.Round(AmountScale),
		Category:  category,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsIncome reports whether the amount is strictly positive.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the amount is strictly negative.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// TransactionPatch carries a partial update; nil fields are left untouched.
// Owner and identifier cannot be patched.
type TransactionPatch struct {
	Title    *string
	Amount   *decimal.Decimal
	Category *string
	Date     *Date
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// Apply copies the set fields of p onto t and bumps UpdatedAt.
func (p TransactionPatch) Apply(t *Transaction, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Amount != nil {
		t.Amount = p.Amount.Round(AmountScale)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	t.UpdatedAt = now
}
