package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopking/auth/pkg/slogx"
)

// ErrAuthUnavailable is returned by an Authenticator that could not reach
// its backing state. The middleware answers 503 instead of 401.
var ErrAuthUnavailable = errors.New("httpx: authentication unavailable")

// Authenticator resolves a raw bearer token into a Principal. An empty
// token means none was presented. Error strings are used verbatim as the
// error_description, so they must not leak internals.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (Principal, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Principal, error) {
	return f(ctx, token)
}

// BearerToken extracts the token from an Authorization header, or "" if
// the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			p, err := a.Authenticate(ctx, BearerToken(r))
			if errors.Is(err, ErrAuthUnavailable) {
				log.Error("authentication backend unavailable", "err", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error":             "temporarily_unavailable",
					"error_description": "authentication is temporarily unavailable",
				})
				return
			}
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				writeBearerError(w, err.Error())
				return
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.WithAttrs(ctx, "subject_id", p.SubjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
