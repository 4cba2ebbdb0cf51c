package http

import (
	"net/http"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
)

type PasswordHandler struct {
	AuthService *service.AuthService
}

// HandleForgot handles POST /api/forgot-password.
//
//	@Summary		Request a password reset
//	@Description	Issues a single-use reset link valid for 15 minutes and delivers it out of band.
//	@Description	Always answers 202 so the endpoint cannot be used to discover registered emails.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		202		{object}	authsdk.MessageResponse			"Accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_input"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"server_error"
//	@Router			/api/forgot-password [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.MessageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

// HandleReset handles POST /api/reset-password/{token}.
//
//	@Summary		Reset password
//	@Description	Redeems the token from a reset link and sets a new password. Each token works once.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Raw reset token from the link"
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	authsdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_input, invalid_reset_token or expired_reset_token"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"server_error"
//	@Router			/api/reset-password/{token} [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "password has been reset"})
}

// HandleChange handles POST /api/change-password.
//
//	@Summary		Change password
//	@Description	Replaces the caller's password after re-checking the current one. Existing sessions stay valid.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_input, wrong_old_password or password_mismatch"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_token"
//	@Failure		404		{object}	authsdk.ErrorResponse			"not_found"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"server_error"
//	@Router			/api/change-password [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	claims, ok := principalClaims(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), claims.SubjectID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "password changed"})
}
