package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireRole admits callers whose principal holds one of roles. It must
// run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing_token")
				return
			}
			if !slices.Contains(roles, p.Role) {
				writeInsufficientRole(w, roles...)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeInsufficientRole(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "forbidden",
		"error_description": "requires role " + strings.Join(required, " or "),
	})
}
