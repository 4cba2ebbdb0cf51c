package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured.
const DefaultPasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt will hash without truncation.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("cryptox: empty password")
	ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")
	ErrMalformedHash   = errors.New("cryptox: malformed password hash")
)

// PasswordVault hashes and verifies passwords with bcrypt at a fixed cost.
// The cost travels inside every encoded hash, so a vault can verify hashes
// produced at any cost while always producing new ones at its own.
type PasswordVault struct {
	cost int
}

// NewPasswordVault returns a vault hashing at the given bcrypt cost.
// A zero cost selects DefaultPasswordCost.
func NewPasswordVault(cost int) (*PasswordVault, error) {
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordVault{cost: cost}, nil
}

// Hash returns the encoded bcrypt hash of password. Two calls with the same
// password yield different encodings because each uses a fresh salt.
func (v *PasswordVault) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches encodedHash. A mismatch is not an
// error; only an unparseable hash is.
func (v *PasswordVault) Verify(password, encodedHash string) (bool, error) {
	if len(password) > MaxPasswordBytes {
		// Could never have been hashed, so it cannot match. Still parse the
		// hash so corrupt records surface regardless of input.
		if _, err := bcrypt.Cost([]byte(encodedHash)); err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
