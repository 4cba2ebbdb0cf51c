package domain

import "time"

// SessionClaims are what a verified session token asserts about its bearer.
type SessionClaims struct {
	SubjectID string
	Role      Role
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is a freshly issued bearer token together with its claims.
type Session struct {
	Token  string
	Claims SessionClaims
}
