package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
)

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html, text string) error {
	if s.cfg.Host == "" || s.cfg.FromEmail == "" {
		return fmt.Errorf("smtp sender: %w", domain.ErrNotConfigured)
	}
	if to == "" {
		return fmt.Errorf("smtp sender: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
