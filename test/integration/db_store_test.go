//go:build integration

package integration

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/smartstock/smartstock/config"
	"github.com/smartstock/smartstock/internal/database"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/internal/store"
)

// applyMigrations reads scripts/init.sql and executes it against the provided pool
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, t *testing.T) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	// tests run from the package dir; locate repo root by walking up to find go.mod
	root := cwd
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		root = filepath.Dir(root)
	}
	path := filepath.Join(root, "scripts", "init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init.sql: %v", err)
	}
	// Execute as a single batch
	_, err = pool.Exec(ctx, string(b))
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}

func TestPostgresStore_WithContainer(t *testing.T) {
	if !containersAvailable() {
		t.Skip("no container runtime available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_DB":       "smartstock",
			"POSTGRES_USER":     "smartstock",
			"POSTGRES_PASSWORD": "password",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := "postgres://smartstock:password@" + host + ":" + port.Port() + "/smartstock?sslmode=disable"

	cfg := config.DatabaseConfig{
		URL:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close(ctx)

	// Apply migrations
	pool := dbpoolFromDB(db)
	applyMigrations(ctx, pool, t)

	st := store.New(db)

	// Create and fetch by key
	item := &models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 120}
	if err := st.CreateInventoryItem(ctx, item); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatalf("expected assigned ID, got 0")
	}

	dup := &models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 5}
	if err := st.CreateInventoryItem(ctx, dup); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate key: want ErrConflict, got %v", err)
	}

	got, err := st.GetInventoryByKey(ctx, models.ItemKey{StoreNbr: 1, Family: "DAIRY"})
	if err != nil {
		t.Fatalf("GetInventoryByKey: %v", err)
	}
	if got == nil || got.CurrentStock != 120 {
		t.Fatalf("unexpected item: %+v", got)
	}

	// Update and list
	got.CurrentStock = 140
	if err := st.UpdateInventoryItem(ctx, got); err != nil {
		t.Fatalf("UpdateInventoryItem: %v", err)
	}
	if err := st.CreateInventoryItem(ctx, &models.InventoryItem{StoreNbr: 2, Family: "PRODUCE", CurrentStock: 30}); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}

	all, err := st.ListInventory(ctx, models.ItemQuery{})
	if err != nil {
		t.Fatalf("ListInventory: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
	if all[0].StoreNbr != 1 || all[1].StoreNbr != 2 {
		t.Fatalf("expected (store_nbr, family) ordering, got %+v", all)
	}

	filtered, err := st.ListInventory(ctx, models.ItemQuery{StoreNbr: 1, Search: "dai"})
	if err != nil {
		t.Fatalf("ListInventory filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].CurrentStock != 140 {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}

	// Sales aggregation
	day := func(d int) time.Time { return time.Date(2017, 8, d, 0, 0, 0, 0, time.UTC) }
	obs := []models.SalesObservation{
		{Date: day(10), StoreNbr: 1, Family: "DAIRY", Sales: 10},
		{Date: day(11), StoreNbr: 1, Family: "DAIRY", Sales: 20, OnPromotion: 1},
		{Date: day(10), StoreNbr: 3, Family: "BEVERAGES", Sales: 7},
	}
	if err := st.ReplaceSales(ctx, obs); err != nil {
		t.Fatalf("ReplaceSales: %v", err)
	}
	has, err := st.HasSales(ctx)
	if err != nil || !has {
		t.Fatalf("HasSales: has=%v err=%v", has, err)
	}

	avg, ok, err := st.AvgSalesForKey(ctx, models.ItemKey{StoreNbr: 1, Family: "DAIRY"})
	if err != nil {
		t.Fatalf("AvgSalesForKey: %v", err)
	}
	if !ok || math.Abs(avg-15) > 1e-9 {
		t.Fatalf("expected avg 15, got ok=%v avg=%v", ok, avg)
	}

	byItem, err := st.AvgSalesByItem(ctx)
	if err != nil {
		t.Fatalf("AvgSalesByItem: %v", err)
	}
	if len(byItem) != 2 {
		t.Fatalf("expected 2 aggregated keys, got %d", len(byItem))
	}

	// Delete and verify it is gone
	if err := st.DeleteInventoryItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteInventoryItem: %v", err)
	}
	if err := st.DeleteInventoryItem(ctx, item.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	missing, err := st.GetInventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetInventoryItem: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil after delete, got %+v", missing)
	}

	// Bulk replace wipes what was there before
	if err := st.ReplaceInventory(ctx, []models.InventoryItem{
		{StoreNbr: 9, Family: "GROCERY I", CurrentStock: 50},
	}); err != nil {
		t.Fatalf("ReplaceInventory: %v", err)
	}
	all, err = st.ListInventory(ctx, models.ItemQuery{})
	if err != nil {
		t.Fatalf("ListInventory after replace: %v", err)
	}
	if len(all) != 1 || all[0].Family != "GROCERY I" {
		t.Fatalf("unexpected inventory after replace: %+v", all)
	}

	if err := st.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

// dbpoolFromDB is a small helper to access the underlying pool for migrations in tests only
func dbpoolFromDB(d *database.DB) *pgxpool.Pool {
	return dpoolAccessor(d)
}
