package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	m, err := NewManager("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_AllowsUnderLimit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _, err := m.CheckRate(ctx, "client-a", 5)
		if err != nil {
			t.Fatalf("check rate: %v", err)
		}
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
}

func TestManager_BlocksOverLimit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := m.CheckRate(ctx, "client-b", 3); err != nil {
			t.Fatalf("check rate: %v", err)
		}
	}

	allowed, reset, err := m.CheckRate(ctx, "client-b", 3)
	if err != nil {
		t.Fatalf("check rate: %v", err)
	}
	if allowed {
		t.Error("Expected request over the limit to be blocked")
	}
	if reset <= 0 || reset > 60 {
		t.Errorf("Expected reset within the minute window, got %d", reset)
	}
}

func TestManager_ClientsAreIndependent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := m.CheckRate(ctx, "client-c", 2); err != nil {
			t.Fatalf("check rate: %v", err)
		}
	}

	allowed, _, err := m.CheckRate(ctx, "client-d", 2)
	if err != nil {
		t.Fatalf("check rate: %v", err)
	}
	if !allowed {
		t.Error("Expected a different client to have its own bucket")
	}
}

func TestNewManager_Unconfigured(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("Expected no error without URL, got %v", err)
	}
	if m != nil {
		t.Error("Expected nil manager without URL")
	}
}
