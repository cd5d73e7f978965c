package lookup

import (
	"context"
	"sync"
	"time"

	contract "lanewise/contracts/lookup"
	"lanewise/pkg/requestcontext"
)

// MemoryCache keeps lookup results in process memory. Entries past the TTL
// are treated as misses and overwritten on the next save.
type MemoryCache struct {
	ttl time.Duration

	mu     sync.RWMutex
	facts  map[string]*contract.VehicleFacts
	values map[string]*contract.ValueEstimate
	safety map[string]*contract.SafetyRecord
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:    ttl,
		facts:  make(map[string]*contract.VehicleFacts),
		values: make(map[string]*contract.ValueEstimate),
		safety: make(map[string]*contract.SafetyRecord),
	}
}

func (c *MemoryCache) fresh(ctx context.Context, fetchedAt time.Time) bool {
	return requestcontext.Now(ctx).Sub(fetchedAt) < c.ttl
}

func (c *MemoryCache) GetFacts(ctx context.Context, vin string) (*contract.VehicleFacts, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	facts, ok := c.facts[vin]
	if !ok || !c.fresh(ctx, facts.FetchedAt) {
		return nil, ErrNotFound
	}
	cp := *facts
	return &cp, nil
}

func (c *MemoryCache) SaveFacts(_ context.Context, facts *contract.VehicleFacts) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *facts
	c.facts[facts.VIN] = &cp
	return nil
}

func (c *MemoryCache) GetValue(ctx context.Context, vin string) (*contract.ValueEstimate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	estimate, ok := c.values[vin]
	if !ok || !c.fresh(ctx, estimate.FetchedAt) {
		return nil, ErrNotFound
	}
	cp := *estimate
	return &cp, nil
}

func (c *MemoryCache) SaveValue(_ context.Context, estimate *contract.ValueEstimate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *estimate
	c.values[estimate.VIN] = &cp
	return nil
}

func (c *MemoryCache) GetSafety(ctx context.Context, year int, make, model string) (*contract.SafetyRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.safety[safetyKey(year, make, model)]
	if !ok || !c.fresh(ctx, record.FetchedAt) {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

func (c *MemoryCache) SaveSafety(_ context.Context, record *contract.SafetyRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *record
	c.safety[safetyKey(record.Year, record.Make, record.Model)] = &cp
	return nil
}
