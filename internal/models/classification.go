package models

// Status is the demand-relative classification of a stock position.
type Status string

const (
	StatusOK         Status = "ok"
	StatusUnderstock Status = "understock"
	StatusOverstock  Status = "overstock"
)

// ClassificationResult is the outcome of reconciling one item's stock
// against its predicted demand. Recomputed on every query, never stored.
//
// Delta keeps the wire name shortage_or_excess: positive means surplus,
// negative means shortfall.
type ClassificationResult struct {
	StoreNbr       int     `json:"store_nbr"`
	Family         string  `json:"family"`
	Date           string  `json:"date"` // YYYY-MM-DD
	OnPromotion    int     `json:"onpromotion"`
	CurrentStock   float64 `json:"current_stock"`
	PredictedSales float64 `json:"predicted_sales"`
	Status         Status  `json:"status"`
	Delta          float64 `json:"shortage_or_excess"`
	Message        string  `json:"message"`
	Source         Source  `json:"source,omitempty"`
}
