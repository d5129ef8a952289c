package forecast

import (
	"context"
	"time"

	"github.com/smartstock/smartstock/internal/metrics"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/pkg/utils"
)

// Adapter wraps the Provider: it builds feature rows, batches all items
// of a query into a single call, and normalizes the output. The engine
// never retries a failed batch call; retries are the caller's business.
type Adapter struct {
	provider Provider
}

// NewAdapter creates an adapter over the given provider
func NewAdapter(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// Ready reports whether the underlying model can serve predictions
func (a *Adapter) Ready(ctx context.Context) error {
	return a.provider.Ready(ctx)
}

// Forecast predicts demand for all keys on one date. One batch call,
// predictions in input order, one per key. onpromotion applies to every
// row; callers without promotion data pass 0.
func (a *Adapter) Forecast(ctx context.Context, keys []models.ItemKey, date time.Time, onpromotion int) ([]float64, error) {
	rows := make([]models.FeatureRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, BuildFeatureRow(key, date, onpromotion))
	}
	return a.predict(ctx, rows)
}

// ForecastRange predicts demand for one key across multiple dates.
// One batch call covering all dates, output in date order.
func (a *Adapter) ForecastRange(ctx context.Context, key models.ItemKey, dates []time.Time) ([]float64, error) {
	rows := make([]models.FeatureRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, BuildFeatureRow(key, d, 0))
	}
	return a.predict(ctx, rows)
}

// Predict runs caller-assembled feature rows through the model. Used
// by the raw prediction endpoint; reconciliation paths go through
// Forecast and ForecastRange instead.
func (a *Adapter) Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error) {
	return a.predict(ctx, rows)
}

func (a *Adapter) predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error) {
	if err := a.provider.Ready(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	preds, err := a.provider.Predict(ctx, rows)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordForecastCall(status, len(rows), time.Since(start))

	if err != nil {
		return nil, err
	}

	// The model's numeric range is unspecified; negative demand is
	// meaningless to the classifier and would invert the zero-demand
	// rules, so predictions are clamped to zero at this boundary.
	for i, p := range preds {
		if p < 0 {
			preds[i] = 0
		}
	}

	return preds, nil
}

// BuildFeatureRow constructs the feature record for one (key, date)
// pair, with the calendar attributes the model was trained on.
// DayOfWeek uses Monday=0 to match the training features.
func BuildFeatureRow(key models.ItemKey, date time.Time, onpromotion int) models.FeatureRow {
	return models.FeatureRow{
		Date:        date.Format(utils.DateOnly),
		StoreNbr:    key.StoreNbr,
		Family:      key.Family,
		OnPromotion: onpromotion,
		Year:        date.Year(),
		Month:       int(date.Month()),
		Day:         date.Day(),
		DayOfWeek:   (int(date.Weekday()) + 6) % 7,
	}
}
