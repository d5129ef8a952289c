package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListInventory retrieves inventory items matching the query
func (s *PostgresStore) ListInventory(ctx context.Context, q models.ItemQuery) ([]models.InventoryItem, error) {
	query := `
		SELECT id, store_nbr, family, current_stock
		FROM inventory
		WHERE 1=1
	`

	var args []interface{}
	argIndex := 1

	if q.StoreNbr != 0 {
		query += fmt.Sprintf(" AND store_nbr = $%d", argIndex)
		args = append(args, q.StoreNbr)
		argIndex++
	}

	if q.Search != "" {
		query += fmt.Sprintf(" AND family ILIKE $%d", argIndex)
		args = append(args, "%"+q.Search+"%")
		argIndex++
	}

	query += " ORDER BY store_nbr, family"

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.StoreNbr, &item.Family, &item.CurrentStock); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// GetInventoryItem retrieves a single item by ID
func (s *PostgresStore) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	query := `
		SELECT id, store_nbr, family, current_stock
		FROM inventory
		WHERE id = $1
	`

	rowInterface := s.db.QueryRow(ctx, query, id)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	var item models.InventoryItem
	err := row.Scan(&item.ID, &item.StoreNbr, &item.Family, &item.CurrentStock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan inventory item: %w", err)
	}

	return &item, nil
}

// GetInventoryByKey retrieves a single item by its (store, family) key
func (s *PostgresStore) GetInventoryByKey(ctx context.Context, key models.ItemKey) (*models.InventoryItem, error) {
	query := `
		SELECT id, store_nbr, family, current_stock
		FROM inventory
		WHERE store_nbr = $1 AND family = $2
	`

	rowInterface := s.db.QueryRow(ctx, query, key.StoreNbr, key.Family)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	var item models.InventoryItem
	err := row.Scan(&item.ID, &item.StoreNbr, &item.Family, &item.CurrentStock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan inventory item: %w", err)
	}

	return &item, nil
}

// CreateInventoryItem inserts a new item. Duplicate (store_nbr, family)
// pairs are rejected with ErrConflict.
func (s *PostgresStore) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	existing, err := s.GetInventoryByKey(ctx, item.Key())
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.ErrConflict
	}

	query := `
		INSERT INTO inventory (store_nbr, family, current_stock)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	rowInterface := s.db.QueryRow(ctx, query, item.StoreNbr, item.Family, item.CurrentStock)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return fmt.Errorf("invalid row type")
	}
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}

	return nil
}

// UpdateInventoryItem replaces an existing item by ID
func (s *PostgresStore) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	existing, err := s.GetInventoryItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.ErrNotFound
	}

	query := `
		UPDATE inventory
		SET store_nbr = $2, family = $3, current_stock = $4
		WHERE id = $1
	`

	if err := s.db.Exec(ctx, query, item.ID, item.StoreNbr, item.Family, item.CurrentStock); err != nil {
		return fmt.Errorf("update inventory item %d: %w", item.ID, err)
	}

	return nil
}

// DeleteInventoryItem removes an item by ID
func (s *PostgresStore) DeleteInventoryItem(ctx context.Context, id int64) error {
	existing, err := s.GetInventoryItem(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.ErrNotFound
	}

	if err := s.db.Exec(ctx, "DELETE FROM inventory WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete inventory item %d: %w", id, err)
	}

	return nil
}

// ReplaceInventory swaps the whole inventory table for the given items
func (s *PostgresStore) ReplaceInventory(ctx context.Context, items []models.InventoryItem) error {
	if err := s.db.Exec(ctx, "DELETE FROM inventory"); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}

	query := `
		INSERT INTO inventory (store_nbr, family, current_stock)
		VALUES ($1, $2, $3)
	`

	for _, item := range items {
		if err := s.db.Exec(ctx, query, item.StoreNbr, item.Family, item.CurrentStock); err != nil {
			return fmt.Errorf("insert inventory item %d/%s: %w", item.StoreNbr, item.Family, err)
		}
	}

	return nil
}

// ReplaceSales swaps the whole sales history for the given observations
func (s *PostgresStore) ReplaceSales(ctx context.Context, obs []models.SalesObservation) error {
	if err := s.db.Exec(ctx, "DELETE FROM sales_records"); err != nil {
		return fmt.Errorf("clear sales records: %w", err)
	}

	query := `
		INSERT INTO sales_records (date, store_nbr, family, sales, onpromotion)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, o := range obs {
		if err := s.db.Exec(ctx, query, o.Date, o.StoreNbr, o.Family, o.Sales, o.OnPromotion); err != nil {
			return fmt.Errorf("insert sales record: %w", err)
		}
	}

	return nil
}

// HasSales reports whether any sales history exists
func (s *PostgresStore) HasSales(ctx context.Context) (bool, error) {
	rowInterface := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM sales_records)")
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return false, fmt.Errorf("invalid row type")
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check sales records: %w", err)
	}

	return exists, nil
}

// AvgSalesByItem returns the arithmetic mean of sales per item key
func (s *PostgresStore) AvgSalesByItem(ctx context.Context) ([]models.ItemSales, error) {
	query := `
		SELECT store_nbr, family, AVG(sales)
		FROM sales_records
		GROUP BY store_nbr, family
		ORDER BY store_nbr, family
	`

	rowsInterface, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var result []models.ItemSales
	for rows.Next() {
		var is models.ItemSales
		if err := rows.Scan(&is.Key.StoreNbr, &is.Key.Family, &is.AvgSales); err != nil {
			return nil, fmt.Errorf("scan sales aggregate: %w", err)
		}
		result = append(result, is)
	}

	return result, nil
}

// AvgSalesForKey returns the mean of sales for one item key
func (s *PostgresStore) AvgSalesForKey(ctx context.Context, key models.ItemKey) (float64, bool, error) {
	query := `
		SELECT AVG(sales), COUNT(*)
		FROM sales_records
		WHERE store_nbr = $1 AND family = $2
	`

	rowInterface := s.db.QueryRow(ctx, query, key.StoreNbr, key.Family)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return 0, false, fmt.Errorf("invalid row type")
	}

	var avg *float64
	var count int64
	if err := row.Scan(&avg, &count); err != nil {
		return 0, false, fmt.Errorf("scan sales aggregate: %w", err)
	}
	if count == 0 || avg == nil {
		return 0, false, nil
	}

	return *avg, true, nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
