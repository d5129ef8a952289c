package models

import "time"

// Severity is the absolute-stock alert classification, independent of
// demand forecasting.
type Severity string

const (
	SeverityStockout   Severity = "STOCKOUT"
	SeverityUnderstock Severity = "UNDERSTOCK"
	SeverityOverstock  Severity = "OVERSTOCK"
)

// AlertEvent is raised when an item's absolute stock level crosses one
// of the alert bands. Events are transient: every sweep may re-raise
// the same condition, nothing is deduplicated or persisted.
type AlertEvent struct {
	ID           string    `json:"id"`
	StoreNbr     int       `json:"store_nbr"`
	Family       string    `json:"family"`
	CurrentStock float64   `json:"current_stock"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	RaisedAt     time.Time `json:"raised_at"`
}
