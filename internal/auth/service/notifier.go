package service

import (
	"context"
	"log/slog"

	"github.com/shopking/auth/pkg/slogx"
)

// PasswordResetEvent is everything needed to deliver a reset link. URL
// embeds the raw token and must only ever reach the account owner.
type PasswordResetEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	URL    string `json:"reset_url"`
}

// ResetNotifier delivers reset links out of band.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, evt PasswordResetEvent) error
}

// LogNotifier writes reset events to the request logger. The link itself
// is only logged when IncludeURL is set, which is meant for local
// development without a mail pipeline.
type LogNotifier struct {
	IncludeURL bool
}

func (n LogNotifier) NotifyPasswordReset(ctx context.Context, evt PasswordResetEvent) error {
	attrs := []any{slog.String("user_id", evt.UserID)}
	if n.IncludeURL {
		attrs = append(attrs, slog.String("reset_url", evt.URL))
	}
	slogx.FromContext(ctx).Info("password reset requested", attrs...)
	return nil
}
