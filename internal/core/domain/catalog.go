package domain

import "sync"

// PlaceCatalog is a deduplicated set of places for one Region, keyed by
// provider identifier. The first record inserted for an identifier wins;
// later inserts for the same identifier are no-ops. Safe for concurrent use.
type PlaceCatalog struct {
	mu      sync.RWMutex
	records map[string]PlaceRecord
	order   []string
}

// NewPlaceCatalog returns an empty catalog.
func NewPlaceCatalog() *PlaceCatalog {
	return &PlaceCatalog{records: make(map[string]PlaceRecord)}
}

// Insert adds p unless its identifier is empty or already present.
// It reports whether the record was added.
func (c *PlaceCatalog) Insert(p PlaceRecord) bool {
	if p.ID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[p.ID]; ok {
		return false
	}
	c.records[p.ID] = p
	c.order = append(c.order, p.ID)
	return true
}

// Has reports whether id is already in the catalog.
func (c *PlaceCatalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[id]
	return ok
}

// Get returns the record for id.
func (c *PlaceCatalog) Get(id string) (PlaceRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.records[id]
	return p, ok
}

// Len returns the number of distinct places.
func (c *PlaceCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Records returns a copy of all records in insertion order.
func (c *PlaceCatalog) Records() []PlaceRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PlaceRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}
