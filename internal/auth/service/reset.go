package service

import (
	"fmt"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/pkg/cryptox"
)

// DefaultResetTTL is how long a password-reset token stays redeemable.
const DefaultResetTTL = 15 * time.Minute

// ResetTokenIssuer mints single-use reset tokens. The raw token leaves the
// process exactly once, through the notifier; only its digest is stored.
type ResetTokenIssuer struct {
	TTL time.Duration
	Now func() time.Time
}

func NewResetTokenIssuer(ttl time.Duration) *ResetTokenIssuer {
	return &ResetTokenIssuer{TTL: ttl}
}

func (i *ResetTokenIssuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now().UTC()
}

func (i *ResetTokenIssuer) ttl() time.Duration {
	if i.TTL <= 0 {
		return DefaultResetTTL
	}
	return i.TTL
}

// Issue returns a fresh raw token and the challenge that redeems it.
func (i *ResetTokenIssuer) Issue() (string, domain.ResetChallenge, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.ResetChallenge{}, fmt.Errorf("reset token: %w", err)
	}
	return raw, domain.NewResetChallenge(cryptox.FingerprintToken(raw), i.now().Add(i.ttl())), nil
}

// Verify checks raw against c. The digest is compared first, so a wrong
// token never learns whether a challenge has expired.
func (i *ResetTokenIssuer) Verify(raw string, c domain.ResetChallenge) error {
	if raw == "" || !c.Present() {
		return ErrInvalidToken
	}
	if !cryptox.EqualFingerprints(cryptox.FingerprintToken(raw), c.TokenHash()) {
		return ErrInvalidToken
	}
	if c.Expired(i.now()) {
		return ErrExpiredToken
	}
	return nil
}

// Consume clears the challenge so the token cannot be redeemed again.
func (i *ResetTokenIssuer) Consume(u *domain.User) {
	u.Reset = domain.ResetChallenge{}
}
