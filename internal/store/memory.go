package store

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.InventoryItem
	sales  []models.SalesObservation
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID: 1,
		items:  make(map[int64]models.InventoryItem),
	}
}

// ListInventory retrieves inventory items matching the query, ordered
// by (store_nbr, family)
func (s *InMemoryStore) ListInventory(ctx context.Context, q models.ItemQuery) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.InventoryItem
	for _, item := range s.items {
		if q.Matches(item) {
			result = append(result, item)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StoreNbr != result[j].StoreNbr {
			return result[i].StoreNbr < result[j].StoreNbr
		}
		return result[i].Family < result[j].Family
	})

	return result, nil
}

// GetInventoryItem retrieves a single item by ID
func (s *InMemoryStore) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return &item, nil
	}

	return nil, nil
}

// GetInventoryByKey retrieves a single item by its (store, family) key
func (s *InMemoryStore) GetInventoryByKey(ctx context.Context, key models.ItemKey) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.StoreNbr == key.StoreNbr && item.Family == key.Family {
			return &item, nil
		}
	}

	return nil, nil
}

// CreateInventoryItem stores a new item and assigns its ID. Duplicate
// (store_nbr, family) pairs are rejected with ErrConflict.
func (s *InMemoryStore) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.StoreNbr == item.StoreNbr && existing.Family == item.Family {
			return apperrors.ErrConflict
		}
	}

	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = *item

	return nil
}

// UpdateInventoryItem replaces an existing item by ID
func (s *InMemoryStore) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; !exists {
		return apperrors.ErrNotFound
	}
	s.items[item.ID] = *item

	return nil
}

// DeleteInventoryItem removes an item by ID
func (s *InMemoryStore) DeleteInventoryItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return apperrors.ErrNotFound
	}
	delete(s.items, id)

	return nil
}

// ReplaceInventory swaps the whole inventory table for the given items
func (s *InMemoryStore) ReplaceInventory(ctx context.Context, items []models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int64]models.InventoryItem, len(items))
	for i := range items {
		item := items[i]
		if item.ID == 0 {
			item.ID = s.nextID
			s.nextID++
		} else if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
		s.items[item.ID] = item
	}

	return nil
}

// ReplaceSales swaps the whole sales history for the given observations
func (s *InMemoryStore) ReplaceSales(ctx context.Context, obs []models.SalesObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = make([]models.SalesObservation, len(obs))
	copy(s.sales, obs)

	return nil
}

// HasSales reports whether any sales history exists
func (s *InMemoryStore) HasSales(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sales) > 0, nil
}

// AvgSalesByItem returns the arithmetic mean of sales per item key,
// over all observations, ordered by (store_nbr, family)
func (s *InMemoryStore) AvgSalesByItem(ctx context.Context) ([]models.ItemSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[models.ItemKey]float64)
	counts := make(map[models.ItemKey]int)
	for _, o := range s.sales {
		key := models.ItemKey{StoreNbr: o.StoreNbr, Family: o.Family}
		sums[key] += o.Sales
		counts[key]++
	}

	result := make([]models.ItemSales, 0, len(sums))
	for key, sum := range sums {
		result = append(result, models.ItemSales{Key: key, AvgSales: sum / float64(counts[key])})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Key.StoreNbr != result[j].Key.StoreNbr {
			return result[i].Key.StoreNbr < result[j].Key.StoreNbr
		}
		return result[i].Key.Family < result[j].Key.Family
	})

	return result, nil
}

// AvgSalesForKey returns the mean of sales for one item key. The bool
// is false when no observations exist for that key.
func (s *InMemoryStore) AvgSalesForKey(ctx context.Context, key models.ItemKey) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var count int
	for _, o := range s.sales {
		if o.StoreNbr == key.StoreNbr && o.Family == key.Family {
			sum += o.Sales
			count++
		}
	}
	if count == 0 {
		return 0, false, nil
	}

	return sum / float64(count), true, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
