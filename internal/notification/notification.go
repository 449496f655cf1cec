package notification

import (
	"context"
	"log/slog"
)

const (
	KindPasswordReset     = "password_reset"
	KindEmailVerification = "email_verification"
	KindWelcome           = "welcome"
)

// Message describes an email to deliver.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger instead of delivering
// them. It stands in for SMTP when no mail server is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger. Bodies carry action links,
// so they are only logged at debug level.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := []any{
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("subject", message.Subject),
	}
	n.logger.Info("notification", attrs...)
	n.logger.DebugContext(ctx, "notification body", append(attrs, slog.String("body", message.Body))...)
	return nil
}
