package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// SlotCache keeps recently requested taken-slot lists keyed by
// (doctorID, date). The UI polls /appointments/taken while the patient picks
// a time, so the same key is read many times between mutations.
type SlotCache struct {
	entries *lru.Cache[string, []string]
}

// NewSlotCache creates a cache holding up to size (doctorID, date) entries.
func NewSlotCache(size int) (*SlotCache, error) {
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &SlotCache{entries: entries}, nil
}

// Get returns the cached taken times for a doctor and date.
func (c *SlotCache) Get(doctorID, date string) ([]string, bool) {
	return c.entries.Get(slotKey(doctorID, date))
}

// Put stores the taken times for a doctor and date.
func (c *SlotCache) Put(doctorID, date string, times []string) {
	c.entries.Add(slotKey(doctorID, date), times)
}

// Invalidate drops the cached entry for a doctor and date. Called after any
// appointment mutation that can change the taken set.
func (c *SlotCache) Invalidate(doctorID, date string) {
	c.entries.Remove(slotKey(doctorID, date))
}

func slotKey(doctorID, date string) string {
	return doctorID + "|" + date
}
