package domain

import "time"

// ResetChallenge is an outstanding password-reset request. The zero value
// means no reset is pending. Only the SHA-256 digest of the raw token is
// ever held here.
type ResetChallenge struct {
	tokenHash string
	expiresAt time.Time
}

func NewResetChallenge(tokenHash string, expiresAt time.Time) ResetChallenge {
	if tokenHash == "" {
		return ResetChallenge{}
	}
	return ResetChallenge{tokenHash: tokenHash, expiresAt: expiresAt.UTC()}
}

func (c ResetChallenge) Present() bool { return c.tokenHash != "" }

func (c ResetChallenge) TokenHash() string { return c.tokenHash }

func (c ResetChallenge) ExpiresAt() time.Time { return c.expiresAt }

// Expired reports whether now is strictly past the expiry.
func (c ResetChallenge) Expired(now time.Time) bool {
	return c.Present() && now.After(c.expiresAt)
}
