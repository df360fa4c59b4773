// Package security hashes and checks the front desk password kept in
// auth.password_hash.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

var (
	ErrPasswordShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	ErrPasswordLong  = fmt.Errorf("password must be at most %d bytes", MaxPasswordLen)
	ErrMismatch      = errors.New("password does not match")
	ErrMalformedHash = errors.New("password hash is not a bcrypt hash")
)

// PasswordHasher is what the login gate needs to check a password.
type PasswordHasher interface {
	Compare(hash, password string) error
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher uses bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the value to put in auth.password_hash.
func (b *BcryptHasher) Hash(password string) (string, error) {
	switch {
	case len(password) < MinPasswordLen:
		return "", ErrPasswordShort
	case len(password) > MaxPasswordLen:
		return "", ErrPasswordLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare returns ErrMismatch for a wrong password and ErrMalformedHash when
// hash itself is unusable.
func (b *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
