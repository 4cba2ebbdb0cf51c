package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
	"github.com/shopking/auth/pkg/slogx"
)

// errorMap translates service errors into response bodies. Bearer
// failures never get here; AuthnMiddleware answers them.
var errorMap = []struct {
	err    error
	apiErr *authsdk.APIError
}{
	{service.ErrDuplicateEmail, authsdk.ErrDuplicateEmail},
	{service.ErrNotFound, authsdk.ErrNotFound},
	{service.ErrConflict, authsdk.ErrConflict},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrWrongOldPassword, authsdk.ErrWrongOldPassword},
	{service.ErrMismatch, authsdk.ErrPasswordMismatch},
	{service.ErrInvalidToken, authsdk.ErrInvalidResetToken},
	{service.ErrExpiredToken, authsdk.ErrExpiredResetToken},
	{service.ErrMissingToken, authsdk.ErrInvalidToken},
	{service.ErrInvalidSignature, authsdk.ErrInvalidToken},
	{service.ErrSessionExpired, authsdk.ErrInvalidToken},
	{service.ErrSessionRevoked, authsdk.ErrInvalidToken},
}

// writeError answers with the APIError matching err. Anything unmapped,
// including corrupt credentials, is a 500 with no detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *service.InputError
	if errors.As(err, &ie) {
		apiErr := authsdk.ErrInvalidInput.WithDescription(ie.Error())
		apiErr.Fields = ie.Fields
		apiErr.WriteError(w)
		return
	}

	for _, m := range errorMap {
		if errors.Is(err, m.err) {
			m.apiErr.WriteError(w)
			return
		}
	}

	if !errors.Is(err, service.ErrInternal) {
		slogx.FromContext(r.Context()).Error("unmapped service error", "err", err)
	}
	authsdk.ErrServerError.WriteError(w)
}

// writeBadBody answers a request whose JSON could not be decoded.
func writeBadBody(w http.ResponseWriter, err error) {
	authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
}

// sessionAuthenticator adapts AuthService to httpx.Authenticator. Errors
// carry the taxonomy code as the bearer error_description.
func sessionAuthenticator(auth *service.AuthService) httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(ctx context.Context, token string) (httpx.Principal, error) {
		claims, err := auth.AuthenticateRequest(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrInternal) {
				return httpx.Principal{}, fmt.Errorf("%w: %w", httpx.ErrAuthUnavailable, err)
			}
			return httpx.Principal{}, err
		}
		return httpx.Principal{
			SubjectID: claims.SubjectID,
			Role:      string(claims.Role),
			SessionID: claims.SessionID,
			ExpiresAt: claims.ExpiresAt,
		}, nil
	})
}

// principalClaims rebuilds the session claims AuthnMiddleware attached.
func principalClaims(r *http.Request) (domain.SessionClaims, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok || p.SubjectID == "" {
		return domain.SessionClaims{}, false
	}
	return domain.SessionClaims{
		SubjectID: p.SubjectID,
		Role:      domain.Role(p.Role),
		SessionID: p.SessionID,
		ExpiresAt: p.ExpiresAt,
	}, true
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Profile.Name,
		Mobile:    u.Profile.Mobile,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
