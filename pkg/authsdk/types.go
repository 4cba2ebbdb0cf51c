package authsdk

import "time"

// ============================================================================
// Request Types
// ============================================================================

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Name     string `json:"name" example:"Alice Smith"`
	Email    string `json:"email" example:"alice@example.com"`
	Mobile   string `json:"mobile" example:"0400000000"`
	Password string `json:"password" example:"correct horse battery staple"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// ChangePasswordRequest requires the current password even though the
// caller already holds a session.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

// ResetPasswordRequest carries the new password. The reset token itself
// travels in the URL path.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ============================================================================
// Response Types
// ============================================================================

// LoginResponse carries the session token. Send it back as
// "Authorization: Bearer {token}".
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type" example:"Bearer"`
	ExpiresIn int       `json:"expires_in" example:"604800"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id" example:"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"`
	Role      string    `json:"role" example:"customer"`
}

// UserResponse is the public view of an account. It never includes the
// password hash or any reset state.
type UserResponse struct {
	ID        string    `json:"id" example:"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"`
	Email     string    `json:"email" example:"alice@example.com"`
	Name      string    `json:"name" example:"Alice Smith"`
	Mobile    string    `json:"mobile" example:"0400000000"`
	Role      string    `json:"role" example:"customer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// MessageResponse acknowledges an operation that returns no data.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse documents the error body for swagger. Clients receive
// *APIError.
type ErrorResponse struct {
	Error            string            `json:"error" example:"invalid_input"`
	ErrorDescription string            `json:"error_description" example:"email is required"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz. Only /readyz fills
// Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok", "disabled" or
// "error: ...".
type HealthChecks struct {
	Database string `json:"database"`
	Denylist string `json:"denylist"`
	Notifier string `json:"notifier"`
}
