package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

var _ Verifier = (*HS256Verifier)(nil)

// HS256Verifier checks HMAC-SHA256 signatures and then the time claims
// against its own clock.
type HS256Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifierHS256 creates a verifier for tokens signed with secret. An
// empty issuer skips the iss check; a nil now uses the wall clock.
func NewVerifierHS256(secret []byte, issuer string, now func() time.Time) *HS256Verifier {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &HS256Verifier{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		now:    now,
	}
}

// Verify checks the signature first, so an expired token with a forged
// signature reports ErrInvalidSig, never ErrExpired.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		default:
			// Unexpected alg or an unverifiable header.
			return Claims{}, fmt.Errorf("%w: %v", ErrAlgMismatch, err)
		}
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(v.now()); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateRequired(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
