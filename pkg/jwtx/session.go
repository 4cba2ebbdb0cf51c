package jwtx

import (
	"time"
)

// SessionIssuer mints and checks session tokens with one shared secret.
type SessionIssuer struct {
	signer   Signer
	verifier Verifier
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// SessionOptions configures a SessionIssuer.
type SessionOptions struct {
	Secret []byte
	Issuer string
	TTL    time.Duration    // zero selects DefaultSessionTTL
	Now    func() time.Time // nil selects the UTC wall clock
}

func NewSessionIssuer(opts SessionOptions) (*SessionIssuer, error) {
	signer, err := NewSignerHS256(opts.Secret)
	if err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &SessionIssuer{
		signer:   signer,
		verifier: NewVerifierHS256(opts.Secret, opts.Issuer, opts.Now),
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
		now:      opts.Now,
	}, nil
}

// TTL is the lifetime given to every issued token.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue signs a fresh session for subject holding role.
func (s *SessionIssuer) Issue(subject, role string) (string, Claims, error) {
	if subject == "" || role == "" {
		return "", Claims{}, ErrInvalidClaim
	}

	claims := NewSessionClaims(subject, role, s.issuer, s.ttl, s.now())
	token, err := s.signer.Sign(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

func (s *SessionIssuer) Verify(token string) (Claims, error) {
	return s.verifier.Verify(token)
}
