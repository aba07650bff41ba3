package patterns

import "sync"

// Cache holds the matches of the current detection pass, indexed by slot.
// It is cleared at the start of every pass and filled once by Store.
type Cache struct {
	mu        sync.RWMutex
	all       []Match
	bySlot    map[int][]int // slot -> positions in all
	populated bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{bySlot: make(map[int][]int)}
}

// Store replaces the cached matches and rebuilds the slot index.
func (c *Cache) Store(matches []Match) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.all = make([]Match, len(matches))
	c.bySlot = make(map[int][]int)
	for i, m := range matches {
		c.all[i] = m.Clone()
		for _, s := range m.Slots {
			c.bySlot[s] = append(c.bySlot[s], i)
		}
	}
	c.populated = true
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.all = nil
	c.bySlot = make(map[int][]int)
	c.populated = false
}

// MatchesAt returns the matches covering slot, in detection order.
func (c *Cache) MatchesAt(slot int) []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	positions := c.bySlot[slot]
	if len(positions) == 0 {
		return nil
	}
	out := make([]Match, len(positions))
	for i, p := range positions {
		out[i] = c.all[p].Clone()
	}
	return out
}

// All returns every cached match in detection order.
func (c *Cache) All() []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Match, len(c.all))
	for i, m := range c.all {
		out[i] = m.Clone()
	}
	return out
}

// Populated reports whether Store ran since the last Clear.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Len returns the number of cached matches.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}
