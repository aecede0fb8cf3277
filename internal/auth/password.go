package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/util"
)

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares plain with a stored hash. A mismatch is util.ErrInvalidCredentials.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return util.ErrInvalidCredentials
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
