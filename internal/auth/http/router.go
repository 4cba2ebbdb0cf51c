package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/httpx"
	"github.com/shopking/auth/pkg/slogx"

	_ "github.com/shopking/auth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// resetPathPrefix carries a raw reset token and is redacted in logs.
const resetPathPrefix = "/api/reset-password/"

// RateLimits picks the bucket sizes per endpoint class.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits reads the process-wide profiles, including any
// RATELIMIT_* overrides.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	AuthService *service.AuthService
	UserService *service.UserService
	Limits      RateLimits

	// Readiness probes. Optional ones are nil when not configured.
	Database Pinger
	Denylist Pinger
	Notifier Pinger
}

func NewRouter(buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, slogx.RedactPathPrefix(resetPathPrefix)),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerSession()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ShopKing Authentication Service API
//	@version		0.1.0
//	@description	Account registration, password login, password reset and session management for the ShopKing store.
//	@description
//	@description				Session tokens are HS256-signed JWTs. Send them as "Authorization: Bearer {token}".
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with bearer authentication and a per-subject limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig, extra ...httpx.Middleware) http.Handler {
	mws := []httpx.Middleware{
		httpx.AuthnMiddleware(sessionAuthenticator(r.AuthService)),
	}
	mws = append(mws, extra...)
	mws = append(mws, httpx.RateLimitBySubject(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	// Credential endpoints - strict rate limit by IP (brute force)
	r.Mux.Handle("POST /api/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /api/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /api/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST "+resetPathPrefix+"{token}",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	// Re-checks the old password, so limited like login.
	r.Mux.Handle("POST /api/change-password", r.authed(h.HandleChange, r.Limits.Strict))
}

func (r *Router) registerSession() {
	h := &SessionHandler{AuthService: r.AuthService, UserService: r.UserService}

	r.Mux.Handle("GET /api/me", r.authed(h.HandleMe, r.Limits.Lenient))
	r.Mux.Handle("POST /api/logout", r.authed(h.HandleLogout, r.Limits.Moderate))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	admin := httpx.RequireRole(string(domain.RoleAdmin))

	r.Mux.Handle("GET /api/users", r.authed(h.HandleList, r.Limits.Moderate, admin))
	r.Mux.Handle("GET /api/users/{id}", r.authed(h.HandleGet, r.Limits.Moderate, admin))
	r.Mux.Handle("DELETE /api/users/{id}", r.authed(h.HandleDelete, r.Limits.Moderate, admin))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.Database, r.Denylist, r.Notifier),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
