package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/internal/store"
	"github.com/smartstock/smartstock/pkg/utils"
)

const fallbackStockFactor = 1.2

// Summary reports what one dataset load produced
type Summary struct {
	SalesRows     int `json:"sales_rows"`
	InventoryRows int `json:"inventory_rows"`
}

// Loader downloads the historical sales dataset and replaces the
// store's sales history with it, then seeds the inventory table with
// synthesized stock levels so a fresh deployment has something to
// classify before real counts arrive.
type Loader struct {
	store    store.Store
	client   *http.Client
	url      string
	rowLimit int
}

// New creates a loader for the configured dataset URL
func New(st store.Store, url string, rowLimit int) *Loader {
	return &Loader{
		store:    st,
		client:   &http.Client{Timeout: 5 * time.Minute},
		url:      url,
		rowLimit: rowLimit,
	}
}

// Load fetches the dataset and replaces sales history and the seeded
// inventory in the store. Rows beyond the configured limit are
// dropped; a non-positive limit loads the whole dataset.
func (l *Loader) Load(ctx context.Context) (*Summary, error) {
	if l.url == "" {
		return nil, fmt.Errorf("no dataset url configured")
	}

	logger.Info("Loading dataset", "url", l.url, "row_limit", l.rowLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}

	obs, err := l.parse(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := l.store.ReplaceSales(ctx, obs); err != nil {
		return nil, fmt.Errorf("replace sales: %w", err)
	}

	items, err := l.seedInventory(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("Dataset loaded", "sales_rows", len(obs), "inventory_rows", items)
	return &Summary{SalesRows: len(obs), InventoryRows: items}, nil
}

// parse reads the CSV stream. Expected header:
// date,store_nbr,family,sales,onpromotion. Malformed rows are skipped
// with a warning rather than failing the whole load.
func (l *Loader) parse(r io.Reader) ([]models.SalesObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"date", "store_nbr", "family", "sales"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var (
		obs     []models.SalesObservation
		skipped int
	)
	for l.rowLimit <= 0 || len(obs) < l.rowLimit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		o, err := parseRecord(record, col)
		if err != nil {
			skipped++
			continue
		}
		obs = append(obs, o)
	}

	if skipped > 0 {
		logger.Warn("Dataset rows skipped", "skipped", skipped)
	}

	return obs, nil
}

func parseRecord(record []string, col map[string]int) (models.SalesObservation, error) {
	var o models.SalesObservation

	// FieldsPerRecord is disabled, so a row may carry fewer fields
	// than the header promised
	for _, name := range []string{"date", "store_nbr", "family", "sales"} {
		if col[name] >= len(record) {
			return o, fmt.Errorf("row has %d fields, %s missing", len(record), name)
		}
	}

	date, err := time.Parse(utils.DateOnly, record[col["date"]])
	if err != nil {
		return o, fmt.Errorf("parse date: %w", err)
	}

	storeNbr, err := strconv.Atoi(record[col["store_nbr"]])
	if err != nil {
		return o, fmt.Errorf("parse store_nbr: %w", err)
	}

	sales, err := strconv.ParseFloat(record[col["sales"]], 64)
	if err != nil {
		return o, fmt.Errorf("parse sales: %w", err)
	}

	var onpromotion int
	if i, ok := col["onpromotion"]; ok && i < len(record) {
		onpromotion, _ = strconv.Atoi(record[i])
	}

	o = models.SalesObservation{
		Date:        date,
		StoreNbr:    storeNbr,
		Family:      record[col["family"]],
		Sales:       sales,
		OnPromotion: onpromotion,
	}
	return o, nil
}

// seedInventory replaces the inventory table with stock levels
// synthesized from the freshly loaded sales history.
func (l *Loader) seedInventory(ctx context.Context) (int, error) {
	byItem, err := l.store.AvgSalesByItem(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate sales: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(byItem))
	for _, s := range byItem {
		stock := s.AvgSales * fallbackStockFactor
		if stock < 0 {
			// returns-heavy history; seed an empty shelf, not a
			// negative count
			stock = 0
		}
		items = append(items, models.InventoryItem{
			StoreNbr:     s.Key.StoreNbr,
			Family:       s.Key.Family,
			CurrentStock: stock,
		})
	}

	if err := l.store.ReplaceInventory(ctx, items); err != nil {
		return 0, fmt.Errorf("replace inventory: %w", err)
	}

	return len(items), nil
}
