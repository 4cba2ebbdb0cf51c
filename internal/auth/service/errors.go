package service

import (
	"errors"
	"sort"
	"strings"
)

// Every failure an operation reports is one of these, possibly wrapped.
// Storage and library errors are logged and surfaced as ErrInternal.
var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrWrongOldPassword   = errors.New("wrong_old_password")
	ErrMismatch           = errors.New("password_mismatch")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrExpiredToken       = errors.New("expired_token")
	ErrMissingToken       = errors.New("missing_token")
	ErrInvalidSignature   = errors.New("invalid_signature")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrCorruptCredential  = errors.New("corrupt_credential")
	ErrInternal           = errors.New("internal_error")
)

var taxonomy = []error{
	ErrInvalidInput, ErrDuplicateEmail, ErrNotFound, ErrConflict,
	ErrInvalidCredentials, ErrWrongOldPassword, ErrMismatch,
	ErrInvalidToken, ErrExpiredToken,
	ErrMissingToken, ErrInvalidSignature, ErrSessionExpired, ErrSessionRevoked,
	ErrCorruptCredential, ErrInternal,
}

// IsKnown reports whether err already belongs to the taxonomy above.
func IsKnown(err error) bool {
	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// InputError carries per-field validation messages. It matches
// ErrInvalidInput under errors.Is.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func fieldError(field, msg string) *InputError {
	return &InputError{Fields: map[string]string{field: msg}}
}
