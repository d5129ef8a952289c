package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/smartstock/smartstock/config"
	"github.com/smartstock/smartstock/internal/models"
)

// EmailNotifier delivers alert events over SMTP
type EmailNotifier struct {
	cfg  config.AlertsConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates an SMTP-backed notifier, or nil when the
// transport is not configured.
func NewEmailNotifier(cfg config.AlertsConfig) *EmailNotifier {
	if cfg.SMTPHost == "" || cfg.AdminEmail == "" {
		return nil
	}
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *EmailNotifier) Channel() string { return "email" }

// Notify sends the event as a plain-text mail to the configured admin
func (n *EmailNotifier) Notify(ctx context.Context, event models.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("%s Alert - %s", event.Severity, event.Family)
	msg := []byte(
		"From: " + n.cfg.SMTPFrom + "\r\n" +
			"To: " + n.cfg.AdminEmail + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			event.Message + "\r\n",
	)

	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	if err := n.send(addr, auth, n.cfg.SMTPFrom, []string{n.cfg.AdminEmail}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
