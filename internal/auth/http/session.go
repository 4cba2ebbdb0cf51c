package http

import (
	"net/http"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
)

type SessionHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

// HandleMe handles GET /api/me.
//
//	@Summary		Current user
//	@Description	Returns the account the bearer token belongs to.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserResponse	"The caller's account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"not_found"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/me [get].
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := principalClaims(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.UserService.Me(r.Context(), claims)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleLogout handles POST /api/logout.
//
//	@Summary		Log out
//	@Description	Revokes the presented session token until it would have expired. Other sessions are unaffected.
//	@Tags			Session
//	@Security		BearerAuth
//	@Success		204	"Session revoked"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := principalClaims(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
