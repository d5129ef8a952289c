package classifier

import (
	"fmt"

	"github.com/smartstock/smartstock/internal/models"
)

// Thresholds are ratios of predicted demand. They are deliberately
// fixed constants: per-call tuning is not part of the current design.
const (
	overstockThreshold  = 1.2
	understockThreshold = 0.8
)

// Result is the classification of one stock position against its
// predicted demand.
type Result struct {
	Status  models.Status
	Delta   float64
	Message string
}

// Classify maps (current stock, predicted demand) to a status. Pure:
// the result is a deterministic function of its two inputs.
//
// The rules are evaluated in order, first match wins:
//
//	stock > 1.2 x demand -> overstock
//	stock < 0.8 x demand -> understock
//	otherwise            -> ok
//
// When demand is zero both comparisons degenerate to stock > 0 and
// stock < 0, so any positive stock classifies as overstock and zero
// stock classifies as ok.
func Classify(currentStock, predictedSales float64) Result {
	status := models.StatusOK
	switch {
	case currentStock > overstockThreshold*predictedSales:
		status = models.StatusOverstock
	case currentStock < understockThreshold*predictedSales:
		status = models.StatusUnderstock
	}

	return Result{
		Status:  status,
		Delta:   currentStock - predictedSales,
		Message: message(status, currentStock, predictedSales),
	}
}

// message formats the human-readable recommendation. Pure formatting of
// the inputs; it must not branch on anything not already in status.
func message(status models.Status, stock, demand float64) string {
	switch status {
	case models.StatusOverstock:
		return fmt.Sprintf(
			"Overstock: Current stock (%.1f) is much higher than predicted demand (%.1f). Consider slowing orders or promotion.",
			stock, demand,
		)
	case models.StatusUnderstock:
		return fmt.Sprintf(
			"Understock: Current stock (%.1f) is lower than predicted demand (%.1f). Consider reordering.",
			stock, demand,
		)
	default:
		return "Stock level is balanced for predicted demand."
	}
}
