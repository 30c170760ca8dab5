package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/KAsare1/Gymhub-server/config"
	"gopkg.in/gomail.v2"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender mails the receipt link to clients that gave an email address.
type EmailSender struct {
	dialer mailDialer
	from   string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
	}
}

func (s *EmailSender) Channel() string { return "email" }

func (s *EmailSender) SendReceipt(ctx context.Context, notice ReceiptNotice) error {
	if notice.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", notice.Email)
	m.SetHeader("Subject", fmt.Sprintf("Your membership receipt from %s", notice.GymName))
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hello %s,</p><p>Thank you for joining %s. Your membership receipt is ready:</p><p><a href="%s">Download receipt</a></p>`,
		html.EscapeString(notice.ClientName),
		html.EscapeString(notice.GymName),
		html.EscapeString(notice.ReceiptURL),
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}
	return nil
}
