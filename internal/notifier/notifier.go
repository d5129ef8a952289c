package notifier

import (
	"context"

	"github.com/smartstock/smartstock/internal/alerts"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/models"
)

// Notifier delivers one alert event over a single channel
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, event models.AlertEvent) error
}

// Dispatcher fans one event out to the channels enabled in Settings.
// Delivery failures are logged and never fail the sweep that raised
// the event.
type Dispatcher struct {
	settings *alerts.Settings
	email    Notifier
	sms      Notifier
}

// NewDispatcher creates a dispatcher. Either notifier may be nil when
// its transport is not configured.
func NewDispatcher(settings *alerts.Settings, email, sms Notifier) *Dispatcher {
	return &Dispatcher{settings: settings, email: email, sms: sms}
}

// Dispatch delivers the events to all enabled channels and returns the
// number of successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, events []models.AlertEvent) int {
	if d == nil || len(events) == 0 {
		return 0
	}

	emailOn, smsOn := d.settings.Snapshot()

	var delivered int
	for _, event := range events {
		if emailOn && d.email != nil {
			delivered += d.send(ctx, d.email, event)
		}
		if smsOn && d.sms != nil {
			delivered += d.send(ctx, d.sms, event)
		}
	}

	return delivered
}

func (d *Dispatcher) send(ctx context.Context, n Notifier, event models.AlertEvent) int {
	if err := n.Notify(ctx, event); err != nil {
		logger.Error("Alert delivery failed",
			"channel", n.Channel(),
			"event_id", event.ID,
			"severity", event.Severity,
			"error", err,
		)
		return 0
	}

	logger.Info("Alert delivered",
		"channel", n.Channel(),
		"event_id", event.ID,
		"severity", event.Severity,
		"store_nbr", event.StoreNbr,
		"family", event.Family,
	)
	return 1
}
