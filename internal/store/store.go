package store

import (
	"context"

	"github.com/smartstock/smartstock/internal/models"
)

// Store defines the interface for inventory and sales storage. The
// reconciliation engine only reads; writes happen through the explicit
// inventory CRUD operations and the dataset ingest.
type Store interface {
	// Inventory
	ListInventory(ctx context.Context, q models.ItemQuery) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	GetInventoryByKey(ctx context.Context, key models.ItemKey) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id int64) error
	ReplaceInventory(ctx context.Context, items []models.InventoryItem) error

	// Sales history
	ReplaceSales(ctx context.Context, obs []models.SalesObservation) error
	HasSales(ctx context.Context) (bool, error)
	AvgSalesByItem(ctx context.Context) ([]models.ItemSales, error)
	AvgSalesForKey(ctx context.Context, key models.ItemKey) (float64, bool, error)

	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
