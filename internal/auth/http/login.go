package http

import (
	"net/http"
	"time"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Now         func() time.Time
}

// ServeHTTP handles POST /api/login.
//
//	@Summary		Log in
//	@Description	Exchanges an email and password for a signed session token.
//	@Description	Unknown emails and wrong passwords get the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Session token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_input"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresIn: max(int(session.Claims.ExpiresAt.Sub(now).Seconds()), 0),
		ExpiresAt: session.Claims.ExpiresAt,
		UserID:    session.Claims.SubjectID,
		Role:      string(session.Claims.Role),
	})
}
