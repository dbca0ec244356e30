package services

import (
	"sync"
	"time"

	"campusmarket/internal/domain"
)

const DefaultDealsCacheTTL = 30 * time.Minute

// DealsCache holds the last fetched deal set for one pipeline. Every Clear
// bumps a generation so a fetch that started before the clear cannot
// repopulate the cache with what it read.
type DealsCache struct {
	mu        sync.RWMutex
	deals     []domain.Deal
	fetchedAt time.Time
	gen       uint64
	ttl       time.Duration
	now       func() time.Time
}

func NewDealsCache(ttl time.Duration) *DealsCache {
	if ttl <= 0 {
		ttl = DefaultDealsCacheTTL
	}
	return &DealsCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached deals while they are within the TTL.
func (c *DealsCache) Get() ([]domain.Deal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.deals == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return cloneDeals(c.deals), true
}

// Set replaces the cached set wholesale, unless the cache was cleared since gen was read.
func (c *DealsCache) Set(deals []domain.Deal, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.deals = cloneDeals(deals)
	c.fetchedAt = c.now()
	return true
}

func (c *DealsCache) Clear() {
	c.mu.Lock()
	c.deals = nil
	c.fetchedAt = time.Time{}
	c.gen++
	c.mu.Unlock()
}

func (c *DealsCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func cloneDeals(in []domain.Deal) []domain.Deal {
	if in == nil {
		return nil
	}
	out := make([]domain.Deal, len(in))
	copy(out, in)
	return out
}
