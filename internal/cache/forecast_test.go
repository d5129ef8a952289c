package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/smartstock/smartstock/internal/models"
)

func newTestCache(t *testing.T) *ForecastCache {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New("redis://"+mr.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestForecastCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := models.ItemKey{StoreNbr: 1, Family: "GROCERY I"}
	end := time.Date(2017, 8, 15, 0, 0, 0, 0, time.UTC)
	points := []models.RangePoint{
		{Date: "2017-08-14", PredictedSales: 3.5},
		{Date: "2017-08-15", PredictedSales: 4.1},
	}

	if _, ok := c.GetRange(ctx, key, 2, end); ok {
		t.Fatal("Expected miss before set")
	}

	c.SetRange(ctx, key, 2, end, points)

	got, ok := c.GetRange(ctx, key, 2, end)
	if !ok {
		t.Fatal("Expected hit after set")
	}
	if len(got) != 2 || got[0] != points[0] || got[1] != points[1] {
		t.Errorf("Unexpected cached points: %+v", got)
	}
}

func TestForecastCache_KeyIsolation(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	end := time.Date(2017, 8, 15, 0, 0, 0, 0, time.UTC)
	key := models.ItemKey{StoreNbr: 1, Family: "GROCERY I"}
	c.SetRange(ctx, key, 7, end, []models.RangePoint{{Date: "2017-08-15", PredictedSales: 1}})

	// Different window length, different item, different end date
	if _, ok := c.GetRange(ctx, key, 8, end); ok {
		t.Error("Expected miss for a different window length")
	}
	if _, ok := c.GetRange(ctx, models.ItemKey{StoreNbr: 2, Family: "GROCERY I"}, 7, end); ok {
		t.Error("Expected miss for a different item")
	}
	if _, ok := c.GetRange(ctx, key, 7, end.AddDate(0, 0, 1)); ok {
		t.Error("Expected miss for a different end date")
	}
}

func TestForecastCache_NilSafety(t *testing.T) {
	var c *ForecastCache
	ctx := context.Background()
	key := models.ItemKey{StoreNbr: 1, Family: "A"}

	if _, ok := c.GetRange(ctx, key, 7, time.Now()); ok {
		t.Error("Expected nil cache to always miss")
	}
	c.SetRange(ctx, key, 7, time.Now(), nil) // must not panic
	if err := c.Close(); err != nil {
		t.Errorf("Expected nil close to succeed, got %v", err)
	}
}

func TestNew_Unconfigured(t *testing.T) {
	c, err := New("", time.Minute)
	if err != nil {
		t.Fatalf("Expected no error without URL, got %v", err)
	}
	if c != nil {
		t.Error("Expected nil cache without URL")
	}
}
