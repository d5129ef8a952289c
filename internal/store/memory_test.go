package store

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
)

func seedItems(t *testing.T, s *InMemoryStore, items ...models.InventoryItem) {
	t.Helper()
	for i := range items {
		if err := s.CreateInventoryItem(context.Background(), &items[i]); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
}

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	item := models.InventoryItem{StoreNbr: 1, Family: "GROCERY I", CurrentStock: 50}
	if err := s.CreateInventoryItem(ctx, &item); err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("Expected ID to be assigned")
	}

	got, err := s.GetInventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("Expected item, got nil")
	}
	if got.Family != "GROCERY I" || got.CurrentStock != 50 {
		t.Errorf("Unexpected item: %+v", got)
	}

	missing, err := s.GetInventoryItem(ctx, 999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing item")
	}
}

func TestInMemoryStore_CreateDuplicateKey(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	seedItems(t, s, models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 10})

	dup := models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 20}
	err := s.CreateInventoryItem(ctx, &dup)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
}

func TestInMemoryStore_GetByKey(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	seedItems(t, s,
		models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 10},
		models.InventoryItem{StoreNbr: 2, Family: "DAIRY", CurrentStock: 30},
	)

	got, err := s.GetInventoryByKey(ctx, models.ItemKey{StoreNbr: 2, Family: "DAIRY"})
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got == nil || got.CurrentStock != 30 {
		t.Errorf("Expected store 2 item, got %+v", got)
	}

	missing, err := s.GetInventoryByKey(ctx, models.ItemKey{StoreNbr: 3, Family: "DAIRY"})
	if err != nil {
		t.Fatalf("get missing key: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown key")
	}
}

func TestInMemoryStore_ListInventory(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	seedItems(t, s,
		models.InventoryItem{StoreNbr: 2, Family: "PRODUCE", CurrentStock: 5},
		models.InventoryItem{StoreNbr: 1, Family: "GROCERY I", CurrentStock: 10},
		models.InventoryItem{StoreNbr: 1, Family: "BEVERAGES", CurrentStock: 20},
	)

	tests := []struct {
		name     string
		query    models.ItemQuery
		expected int
	}{
		{"No filter", models.ItemQuery{}, 3},
		{"Store filter", models.ItemQuery{StoreNbr: 1}, 2},
		{"Search filter", models.ItemQuery{Search: "grocery"}, 1},
		{"Store and search", models.ItemQuery{StoreNbr: 2, Search: "produce"}, 1},
		{"No matches", models.ItemQuery{StoreNbr: 9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListInventory(ctx, tt.query)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(items) != tt.expected {
				t.Errorf("Expected %d items, got %d", tt.expected, len(items))
			}
		})
	}

	// Ordering is (store_nbr, family)
	items, err := s.ListInventory(ctx, models.ItemQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Family != "BEVERAGES" || items[1].Family != "GROCERY I" || items[2].Family != "PRODUCE" {
		t.Errorf("Unexpected ordering: %+v", items)
	}
}

func TestInMemoryStore_UpdateAndDelete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	item := models.InventoryItem{StoreNbr: 1, Family: "DAIRY", CurrentStock: 10}
	seedItems(t, s, item)

	updated := models.InventoryItem{ID: 1, StoreNbr: 1, Family: "DAIRY", CurrentStock: 99}
	if err := s.UpdateInventoryItem(ctx, &updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetInventoryItem(ctx, 1)
	if got.CurrentStock != 99 {
		t.Errorf("Expected stock 99, got %f", got.CurrentStock)
	}

	missing := models.InventoryItem{ID: 42, StoreNbr: 1, Family: "DAIRY"}
	if err := s.UpdateInventoryItem(ctx, &missing); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update, got %v", err)
	}

	if err := s.DeleteInventoryItem(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteInventoryItem(ctx, 1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on repeated delete, got %v", err)
	}
}

func TestInMemoryStore_ReplaceInventory(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	seedItems(t, s, models.InventoryItem{StoreNbr: 1, Family: "OLD", CurrentStock: 1})

	replacement := []models.InventoryItem{
		{StoreNbr: 1, Family: "NEW A", CurrentStock: 5},
		{StoreNbr: 2, Family: "NEW B", CurrentStock: 6},
	}
	if err := s.ReplaceInventory(ctx, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	items, err := s.ListInventory(ctx, models.ItemQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items after replace, got %d", len(items))
	}
	for _, item := range items {
		if item.ID == 0 {
			t.Error("Expected replaced items to get IDs")
		}
		if item.Family == "OLD" {
			t.Error("Expected old inventory to be gone")
		}
	}
}

func TestInMemoryStore_SalesAggregation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	hasSales, err := s.HasSales(ctx)
	if err != nil {
		t.Fatalf("has sales: %v", err)
	}
	if hasSales {
		t.Error("Expected no sales initially")
	}

	day := time.Date(2017, 8, 1, 0, 0, 0, 0, time.UTC)
	var obs []models.SalesObservation
	for i, v := range []float64{3, 6, 2, 8, 1, 5, 4} {
		obs = append(obs, models.SalesObservation{
			Date: day.AddDate(0, 0, i), StoreNbr: 1, Family: "GROCERY I", Sales: v,
		})
	}
	obs = append(obs, models.SalesObservation{Date: day, StoreNbr: 2, Family: "DAIRY", Sales: 10})

	if err := s.ReplaceSales(ctx, obs); err != nil {
		t.Fatalf("replace sales: %v", err)
	}

	hasSales, _ = s.HasSales(ctx)
	if !hasSales {
		t.Error("Expected sales after replace")
	}

	byItem, err := s.AvgSalesByItem(ctx)
	if err != nil {
		t.Fatalf("avg by item: %v", err)
	}
	if len(byItem) != 2 {
		t.Fatalf("Expected 2 aggregates, got %d", len(byItem))
	}
	if byItem[0].Key.StoreNbr != 1 || math.Abs(byItem[0].AvgSales-29.0/7.0) > 1e-9 {
		t.Errorf("Unexpected aggregate for store 1: %+v", byItem[0])
	}
	if byItem[1].Key.StoreNbr != 2 || byItem[1].AvgSales != 10 {
		t.Errorf("Unexpected aggregate for store 2: %+v", byItem[1])
	}

	avg, found, err := s.AvgSalesForKey(ctx, models.ItemKey{StoreNbr: 1, Family: "GROCERY I"})
	if err != nil {
		t.Fatalf("avg for key: %v", err)
	}
	if !found || math.Abs(avg-29.0/7.0) > 1e-9 {
		t.Errorf("Expected avg 29/7, got %f (found=%v)", avg, found)
	}

	_, found, err = s.AvgSalesForKey(ctx, models.ItemKey{StoreNbr: 9, Family: "NONE"})
	if err != nil {
		t.Fatalf("avg for missing key: %v", err)
	}
	if found {
		t.Error("Expected found=false for unknown key")
	}
}

func TestInMemoryStore_Health(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Expected nil health, got %v", err)
	}
}
