package models

import (
	"strings"
	"time"
)

// Source identifies where an inventory snapshot came from.
type Source string

const (
	// SourceInventory means the snapshot was read verbatim from the
	// authoritative inventory table.
	SourceInventory Source = "inventory"

	// SourceSales means no authoritative inventory existed and the
	// snapshot was synthesized from historical sales.
	SourceSales Source = "sales_records"
)

// ItemKey identifies one (store, product family) combination.
type ItemKey struct {
	StoreNbr int    `json:"store_nbr"`
	Family   string `json:"family"`
}

// InventoryItem is the current stock position for one item at one store.
type InventoryItem struct {
	ID           int64   `json:"id,omitempty" db:"id"`
	StoreNbr     int     `json:"store_nbr" db:"store_nbr"`
	Family       string  `json:"family" db:"family"`
	CurrentStock float64 `json:"current_stock" db:"current_stock"`
}

// Key returns the item's (store, family) key.
func (i InventoryItem) Key() ItemKey {
	return ItemKey{StoreNbr: i.StoreNbr, Family: i.Family}
}

// SalesObservation is one historical sales fact. Immutable once recorded.
type SalesObservation struct {
	Date        time.Time `json:"date" db:"date"`
	StoreNbr    int       `json:"store_nbr" db:"store_nbr"`
	Family      string    `json:"family" db:"family"`
	Sales       float64   `json:"sales" db:"sales"`
	OnPromotion int       `json:"onpromotion" db:"onpromotion"`
}

// ItemSales is the aggregated mean of sales for one item key.
type ItemSales struct {
	Key      ItemKey
	AvgSales float64
}

// Resolved is an inventory snapshot together with its provenance, so
// callers can observe whether they are looking at authoritative or
// synthesized stock figures.
type Resolved struct {
	Source Source
	Items  []InventoryItem
}

// ItemQuery represents query parameters for filtering inventory items
type ItemQuery struct {
	StoreNbr int    `json:"store_nbr"` // 0 means no store filter
	Search   string `json:"search"`    // case-insensitive family substring
}

// Matches checks if an inventory item matches the query criteria
func (q ItemQuery) Matches(item InventoryItem) bool {
	if q.StoreNbr != 0 && item.StoreNbr != q.StoreNbr {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(item.Family), strings.ToLower(q.Search)) {
		return false
	}
	return true
}
