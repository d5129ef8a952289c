package models

import "time"

// FeatureRow is one record sent to the forecast provider. It carries the
// raw key plus the calendar attributes the model was trained on.
// Ephemeral, constructed per forecast call, never persisted.
type FeatureRow struct {
	Date        string `json:"date"` // YYYY-MM-DD
	StoreNbr    int    `json:"store_nbr"`
	Family      string `json:"family"`
	OnPromotion int    `json:"onpromotion"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	DayOfWeek   int    `json:"day_of_week"` // Monday=0, matching the training features
}

// ForecastResult pairs one item and date with its predicted demand.
type ForecastResult struct {
	StoreNbr       int       `json:"store_nbr"`
	Family         string    `json:"family"`
	Date           time.Time `json:"date"`
	PredictedSales float64   `json:"predicted_sales"`
}

// RangePoint is one point of a demand-only forecast time series.
type RangePoint struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	PredictedSales float64 `json:"predicted_sales"`
}
