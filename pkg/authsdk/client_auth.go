package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates a customer account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/register", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates with email and password. A wrong password and an
// unknown email both return ErrInvalidCredentials.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, login), nil
}

// ForgotPassword asks for a reset link. It succeeds whether or not the
// email is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/forgot-password", ForgotPasswordRequest{Email: email})
	if err != nil {
		return err
	}

	var msg MessageResponse
	return decodeJSON(resp, &msg, http.StatusAccepted)
}

// ResetPassword redeems the token from a reset link.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/reset-password/"+url.PathEscape(token), ResetPasswordRequest{Password: newPassword})
	if err != nil {
		return err
	}

	var msg MessageResponse
	return decodeJSON(resp, &msg, http.StatusOK)
}
