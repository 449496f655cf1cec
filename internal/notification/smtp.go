package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/linkvault/linkvault_api/internal/config"
)

// dialer is the subset of gomail.Dialer used to deliver messages.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier delivers HTML email through an SMTP server.
type SMTPNotifier struct {
	from   string
	dialer dialer
}

// NewSMTPNotifier builds a notifier from SMTP settings.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers the message. The context is checked before dialing; gomail
// itself does not accept one.
func (n *SMTPNotifier) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", message.Destination)
	m.SetHeader("Subject", message.Subject)
	m.SetBody("text/html", message.Body)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email to %s: %w", message.Kind, message.Destination, err)
	}
	return nil
}
