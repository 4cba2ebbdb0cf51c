package httpx

import (
	"context"
	"time"
)

type ctxKey string

const CtxKeyPrincipal ctxKey = "principal"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	SubjectID string
	Role      string
	SessionID string
	ExpiresAt time.Time
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, CtxKeyPrincipal, p)
}

// PrincipalFromContext returns the caller set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
