package cache

import (
	"reflect"
	"testing"
)

func TestSlotCache_PutGetInvalidate(t *testing.T) {
	c, err := NewSlotCache(8)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	if _, ok := c.Get("doctor-1", "2025-01-06"); ok {
		t.Error("expected a miss on an empty cache")
	}

	times := []string{"09:00", "10:00"}
	c.Put("doctor-1", "2025-01-06", times)

	got, ok := c.Get("doctor-1", "2025-01-06")
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if !reflect.DeepEqual(got, times) {
		t.Errorf("got %v, want %v", got, times)
	}

	// Same doctor, other date is a distinct key
	if _, ok := c.Get("doctor-1", "2025-01-07"); ok {
		t.Error("expected a miss for a different date")
	}

	c.Invalidate("doctor-1", "2025-01-06")
	if _, ok := c.Get("doctor-1", "2025-01-06"); ok {
		t.Error("expected a miss after Invalidate")
	}
}

func TestSlotCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewSlotCache(2)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	c.Put("doctor-1", "2025-01-06", []string{"09:00"})
	c.Put("doctor-2", "2025-01-06", []string{"10:00"})
	c.Put("doctor-3", "2025-01-06", []string{"11:00"})

	if _, ok := c.Get("doctor-1", "2025-01-06"); ok {
		t.Error("expected the oldest entry to be evicted")
	}
	if _, ok := c.Get("doctor-3", "2025-01-06"); !ok {
		t.Error("expected the newest entry to survive")
	}
}
