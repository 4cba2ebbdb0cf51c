package slogx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopking/auth/pkg/idx"
)

// RequestIDHeader is read from incoming requests and echoed on responses.
const RequestIDHeader = "X-Request-ID"

// MiddlewareOption tunes HTTPMiddleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	redactPrefixes []string
}

// RedactPathPrefix replaces everything after prefix in logged paths. Use it
// for routes that carry secrets in the URL.
func RedactPathPrefix(prefix string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.redactPrefixes = append(c.redactPrefixes, prefix)
	}
}

// HTTPMiddleware logs requests and attaches a contextual logger into request context.
func HTTPMiddleware(base *slog.Logger, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	var cfg middlewareConfig
	for _, o := range opts {
		o(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = idx.New().String()
			}
			rw.Header().Set(RequestIDHeader, reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", cfg.redact(r.URL.Path),
				"remote_addr", r.RemoteAddr,
			)

			r = r.WithContext(WithContext(r.Context(), logger))
			next.ServeHTTP(rw, r)

			logger.Info("http_request",
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

func (c middlewareConfig) redact(path string) string {
	for _, p := range c.redactPrefixes {
		if strings.HasPrefix(path, p) && len(path) > len(p) {
			return p + "[redacted]"
		}
	}
	return path
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
