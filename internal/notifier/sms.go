package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smartstock/smartstock/config"
	"github.com/smartstock/smartstock/internal/models"
)

// SMSNotifier delivers alert events through an HTTP SMS gateway using
// the common form-encoded To/From/Body shape.
type SMSNotifier struct {
	cfg    config.AlertsConfig
	client *http.Client
}

// NewSMSNotifier creates a gateway-backed notifier, or nil when the
// transport is not configured.
func NewSMSNotifier(cfg config.AlertsConfig) *SMSNotifier {
	if cfg.SMSGatewayURL == "" || cfg.AdminPhone == "" {
		return nil
	}
	return &SMSNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *SMSNotifier) Channel() string { return "sms" }

// Notify posts the event body to the gateway for the configured admin
func (n *SMSNotifier) Notify(ctx context.Context, event models.AlertEvent) error {
	form := url.Values{}
	form.Set("To", n.cfg.AdminPhone)
	form.Set("From", n.cfg.SMSFrom)
	form.Set("Body", event.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.SMSGatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if n.cfg.SMSAccountID != "" {
		req.SetBasicAuth(n.cfg.SMSAccountID, n.cfg.SMSAuthToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}

	return nil
}
