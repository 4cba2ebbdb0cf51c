package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopking/auth/pkg/idx"
)

// DefaultSessionTTL is how long a session token stays valid when the
// issuer is not configured otherwise.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session-token claims shared by every service that trusts
// this issuer. Subject carries the user ID and ID carries the session ID.
type Claims struct {
	jwt.RegisteredClaims

	// Role granted to the subject at the moment of issue.
	Role string `json:"role"`
}

// NewSessionClaims builds minimally-correct claims.
func NewSessionClaims(subject, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
	}
}

// NewJTI returns a ULID for the "jti" claim. It names the session in the
// logout denylist.
func NewJTI() string {
	return idx.New().String()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiryAt checks exp and nbf against now. A token is still valid
// at the exact instant it expires and invalid one tick later.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateRequired ensures the claims identify a subject and a role.
func (c *Claims) ValidateRequired() error {
	if c.Subject == "" || c.Role == "" || c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	return nil
}
