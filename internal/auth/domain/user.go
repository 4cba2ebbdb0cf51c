package domain

import (
	"strings"
	"time"
)

// Profile is the contact information a user registers with.
type Profile struct {
	Name   string
	Mobile string
}

type User struct {
	ID           string
	Email        string // lower-cased and trimmed, unique
	Profile      Profile
	Role         Role
	PasswordHash string // bcrypt encoded, carries its own cost
	Reset        ResetChallenge
	Version      int64 // bumped on every save; guards concurrent writers
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
