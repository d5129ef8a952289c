package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartstock/smartstock/internal/models"
)

// Absolute stock bands. These are independent of demand forecasting:
// an item can be demand-relative "ok" and still sit in an alert band.
const (
	stockoutLevel   = 0.0
	understockLevel = 20.0
	overstockLevel  = 500.0
)

// Evaluate maps an item's absolute stock level to an alert severity.
// The second return is false when the stock sits in no alert band.
//
// Pure and stateless, without deduplication: evaluating an unchanged
// item on every sweep re-yields the same condition. Callers needing
// debouncing must implement it themselves.
func Evaluate(item models.InventoryItem) (models.Severity, bool) {
	switch {
	case item.CurrentStock <= stockoutLevel:
		// resolved stock is clamped at zero, but a negative level
		// still reads as an empty shelf, never as understock
		return models.SeverityStockout, true
	case item.CurrentStock < understockLevel:
		return models.SeverityUnderstock, true
	case item.CurrentStock > overstockLevel:
		return models.SeverityOverstock, true
	default:
		return "", false
	}
}

// NewEvent assembles the transient AlertEvent for a severity produced
// by Evaluate. Event identity and timestamps live here so Evaluate
// itself stays a pure function of the item.
func NewEvent(item models.InventoryItem, severity models.Severity) models.AlertEvent {
	return models.AlertEvent{
		ID:           uuid.NewString(),
		StoreNbr:     item.StoreNbr,
		Family:       item.Family,
		CurrentStock: item.CurrentStock,
		Severity:     severity,
		Message:      EventMessage(item, severity),
		RaisedAt:     time.Now().UTC(),
	}
}

// EventMessage builds the notification body for one event. Pure
// formatting of the item and severity.
func EventMessage(item models.InventoryItem, severity models.Severity) string {
	return fmt.Sprintf(
		"Stock Alert\nItem: %s\nStore: %d\nStock: %.1f\nStatus: %s",
		item.Family, item.StoreNbr, item.CurrentStock, severity,
	)
}
