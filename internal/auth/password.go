package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor; ~250ms per hash on current server
// hardware.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification for
// email/password accounts. It is a struct so tests can inject a lower cost.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// newPasswordServiceWithCost is used by tests to keep hashing fast.
func newPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of password. The salt is generated and
// embedded by bcrypt; no separate salt storage is needed.
func (s *PasswordService) Hash(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("auth: password must not be empty")
	}
	// bcrypt silently truncates beyond 72 bytes; reject instead.
	if len(password) > 72 {
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether password matches the stored hash.
func (s *PasswordService) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
