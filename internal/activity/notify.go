package activity

import (
	"context"
	"log/slog"
)

// Notifier delivers a user-facing message. Delivery is fire-and-forget: the
// engine logs failures and moves on, it never blocks a cart on notification
// delivery problems.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// real delivery channel (mail, push) in local deployments.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID, message string) error {
	slog.Info("notify", "user_id", userID, "message", message)
	return nil
}
