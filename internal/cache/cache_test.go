package cache

import (
	"testing"
	"time"

	"github.com/pable/go-smite-metrics/internal/table"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory(0)
	tb := table.New("kda", "player_name")

	if _, ok := c.Get("kda"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("kda", tb)
	got, ok := c.Get("kda")
	if !ok || got != tb {
		t.Errorf("expected the stored table back, got %v ok=%v", got, ok)
	}
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory(0)
	c.Set("a", table.New("a"))
	c.Set("b", table.New("b"))

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected invalidated key to miss")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected sibling key to survive")
	}
}

func TestMemoryClear(t *testing.T) {
	c := NewMemory(0)
	c.Set("a", table.New("a"))
	c.Set("b", table.New("b"))

	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("expected clear to drop every entry")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected clear to drop every entry")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	clock := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("kda", table.New("kda"))
	clock = clock.Add(30 * time.Second)
	if _, ok := c.Get("kda"); !ok {
		t.Fatal("expected hit within ttl")
	}

	clock = clock.Add(time.Minute)
	if _, ok := c.Get("kda"); ok {
		t.Error("expected expiry past ttl")
	}
	// Expired entries are dropped, not just masked.
	if len(c.entries) != 0 {
		t.Errorf("expected expired entry removed, have %d", len(c.entries))
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	c := NewMemory(0)
	clock := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("kda", table.New("kda"))
	clock = clock.Add(24 * time.Hour)
	if _, ok := c.Get("kda"); !ok {
		t.Error("expected zero ttl to disable expiry")
	}
}
