// internal/domain/user.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents an account owning a ledger.
type User struct {
	ID           uuid.UUID `db:"id" json:"_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`     // Unique, lower-cased
	PasswordHash string    `db:"password_hash" json:"-"` // Never serialized
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new User instance with a fresh identifier.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is the public view of a User.
type Profile struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
