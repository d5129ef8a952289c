package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/smartstock/smartstock/internal/alerts"
	"github.com/smartstock/smartstock/internal/cache"
	"github.com/smartstock/smartstock/internal/classifier"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/forecast"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/metrics"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/internal/notifier"
	"github.com/smartstock/smartstock/internal/store"
	"github.com/smartstock/smartstock/pkg/utils"
)

// fallbackStockFactor synthesizes a stock level from mean historical
// sales when no authoritative inventory exists. A fixed modeling
// assumption, not a measured quantity.
const fallbackStockFactor = 1.2

// synthesizeStock converts mean historical sales into a stock
// estimate. A returns-heavy history can average below zero; that
// clamps to an empty shelf so downstream alert bands see a stockout,
// not a negative count.
func synthesizeStock(avgSales float64) float64 {
	if avgSales <= 0 {
		return 0
	}
	return avgSales * fallbackStockFactor
}

const (
	minRangeDays = 1
	maxRangeDays = 365
)

// Reconciler orchestrates the engine: it resolves inventory snapshots,
// obtains demand forecasts, classifies stock positions, and sweeps the
// alert bands. It holds no per-query state; every query is recomputed
// from the store and the forecast provider.
type Reconciler struct {
	store      store.Store
	adapter    *forecast.Adapter
	cache      *cache.ForecastCache
	dispatcher *notifier.Dispatcher
	now        func() time.Time
}

// New creates a reconciler. cache and dispatcher may be nil.
func New(st store.Store, adapter *forecast.Adapter, fc *cache.ForecastCache, dispatcher *notifier.Dispatcher) *Reconciler {
	return &Reconciler{
		store:      st,
		adapter:    adapter,
		cache:      fc,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Resolve produces the full inventory snapshot with its provenance.
// Authoritative inventory wins outright; the sales fallback only
// engages when no authoritative record exists at all, not when a
// single item is missing.
func (r *Reconciler) Resolve(ctx context.Context) (models.Resolved, error) {
	items, err := r.store.ListInventory(ctx, models.ItemQuery{})
	if err != nil {
		return models.Resolved{}, err
	}
	if len(items) > 0 {
		return models.Resolved{Source: models.SourceInventory, Items: items}, nil
	}

	byItem, err := r.store.AvgSalesByItem(ctx)
	if err != nil {
		return models.Resolved{}, err
	}
	if len(byItem) == 0 {
		return models.Resolved{}, apperrors.ErrNoData
	}

	synthesized := make([]models.InventoryItem, 0, len(byItem))
	for _, s := range byItem {
		synthesized = append(synthesized, models.InventoryItem{
			StoreNbr:     s.Key.StoreNbr,
			Family:       s.Key.Family,
			CurrentStock: synthesizeStock(s.AvgSales),
		})
	}

	logger.Info("Inventory synthesized from sales history", "items", len(synthesized))
	return models.Resolved{Source: models.SourceSales, Items: synthesized}, nil
}

// resolveKey resolves the stock level for a single item key, falling
// back to synthesized stock when the item has no inventory record but
// does have sales history.
func (r *Reconciler) resolveKey(ctx context.Context, key models.ItemKey) (float64, models.Source, error) {
	item, err := r.store.GetInventoryByKey(ctx, key)
	if err != nil {
		return 0, "", err
	}
	if item != nil {
		return item.CurrentStock, models.SourceInventory, nil
	}

	avg, found, err := r.store.AvgSalesForKey(ctx, key)
	if err != nil {
		return 0, "", err
	}
	if !found {
		return 0, "", fmt.Errorf("%w: store %d family %q", apperrors.ErrUnknownItem, key.StoreNbr, key.Family)
	}

	return synthesizeStock(avg), models.SourceSales, nil
}

// CheckItem classifies one item's stock position for a date. When
// stockOverride is non-nil the caller supplied its own stock figure and
// no resolution happens; otherwise the stock is resolved from the store
// with the sales fallback.
func (r *Reconciler) CheckItem(ctx context.Context, key models.ItemKey, date time.Time, onpromotion int, stockOverride *float64) (*models.ClassificationResult, error) {
	var (
		stock  float64
		source models.Source
	)

	if stockOverride != nil {
		stock = *stockOverride
	} else {
		var err error
		stock, source, err = r.resolveKey(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	preds, err := r.adapter.Forecast(ctx, []models.ItemKey{key}, date, onpromotion)
	if err != nil {
		return nil, err
	}

	res := r.buildResult(key, date, onpromotion, stock, preds[0], source)
	return &res, nil
}

// CheckAll classifies every item in the resolved snapshot for a date.
// One batch forecast call covers the whole snapshot; results preserve
// snapshot order, and each message is tagged with the snapshot source.
func (r *Reconciler) CheckAll(ctx context.Context, date time.Time) ([]models.ClassificationResult, models.Source, error) {
	resolved, err := r.Resolve(ctx)
	if err != nil {
		return nil, "", err
	}

	keys := make([]models.ItemKey, 0, len(resolved.Items))
	for _, item := range resolved.Items {
		keys = append(keys, item.Key())
	}

	preds, err := r.adapter.Forecast(ctx, keys, date, 0)
	if err != nil {
		return nil, "", err
	}

	results := make([]models.ClassificationResult, 0, len(resolved.Items))
	for i, item := range resolved.Items {
		res := r.buildResult(item.Key(), date, 0, item.CurrentStock, preds[i], resolved.Source)
		res.Message += fmt.Sprintf(" [source=%s]", resolved.Source)
		results = append(results, res)
	}

	return results, resolved.Source, nil
}

func (r *Reconciler) buildResult(key models.ItemKey, date time.Time, onpromotion int, stock, predicted float64, source models.Source) models.ClassificationResult {
	c := classifier.Classify(stock, predicted)
	return models.ClassificationResult{
		StoreNbr:       key.StoreNbr,
		Family:         key.Family,
		Date:           date.Format(utils.DateOnly),
		OnPromotion:    onpromotion,
		CurrentStock:   stock,
		PredictedSales: predicted,
		Status:         c.Status,
		Delta:          c.Delta,
		Message:        c.Message,
		Source:         source,
	}
}

// RangeForecast returns a demand-only series for one item: days
// consecutive calendar dates ending today, in ascending order, with no
// stock classification. days must be in [1, 365].
func (r *Reconciler) RangeForecast(ctx context.Context, key models.ItemKey, days int) ([]models.RangePoint, error) {
	if days < minRangeDays || days > maxRangeDays {
		return nil, apperrors.ErrInvalidRange
	}

	end := r.now().UTC()

	if points, ok := r.cache.GetRange(ctx, key, days, end); ok {
		return points, nil
	}

	dates := utils.DateRange(end, days)
	preds, err := r.adapter.ForecastRange(ctx, key, dates)
	if err != nil {
		return nil, err
	}

	points := make([]models.RangePoint, 0, len(dates))
	for i, d := range dates {
		points = append(points, models.RangePoint{
			Date:           d.Format(utils.DateOnly),
			PredictedSales: preds[i],
		})
	}

	r.cache.SetRange(ctx, key, days, end, points)
	return points, nil
}

// Sweep enumerates the resolved inventory snapshot, evaluates the
// absolute alert bands per item, and dispatches every raised event.
// No forecast call is involved. Sweeping an empty system raises
// nothing and is not an error.
func (r *Reconciler) Sweep(ctx context.Context) ([]models.AlertEvent, error) {
	start := time.Now()

	resolved, err := r.Resolve(ctx)
	if err != nil {
		if err == apperrors.ErrNoData {
			return nil, nil
		}
		return nil, err
	}

	var events []models.AlertEvent
	for _, item := range resolved.Items {
		if severity, ok := alerts.Evaluate(item); ok {
			events = append(events, alerts.NewEvent(item, severity))
		}
	}

	delivered := r.dispatcher.Dispatch(ctx, events)
	metrics.RecordSweep(len(events), time.Since(start))

	if len(events) > 0 {
		logger.Info("Alert sweep completed",
			"items", len(resolved.Items),
			"events", len(events),
			"delivered", delivered,
		)
	}

	return events, nil
}
