package cache

import (
	"testing"
	"time"
)

func TestCache_SetGetExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.SetWithTTL("b", 2, 10*time.Second)

	if v, ok := c.Get("a"); !ok || v.(int) != 1 {
		t.Fatalf("expected a=1, got %v,%v", v, ok)
	}

	now = now.Add(11 * time.Second)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be expired")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to still be present")
	}

	now = now.Add(time.Minute)
	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed entry, got %d", removed)
	}
}

func TestCache_TTLIsCapped(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(time.Second)
	c.now = func() time.Time { return now }

	c.SetWithTTL("k", "v", time.Hour)
	now = now.Add(2 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("ttl above the cache default should be capped")
	}
}
