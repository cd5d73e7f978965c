package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	contract "lanewise/contracts/lookup"
)

// RedisCache shares lookup results across service instances. Freshness is
// enforced by the key TTL, so a hit is always within the 24-hour window.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetFacts(ctx context.Context, vin string) (*contract.VehicleFacts, error) {
	var facts contract.VehicleFacts
	if err := c.get(ctx, "lookup:facts:"+vin, &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

func (c *RedisCache) SaveFacts(ctx context.Context, facts *contract.VehicleFacts) error {
	return c.set(ctx, "lookup:facts:"+facts.VIN, facts)
}

func (c *RedisCache) GetValue(ctx context.Context, vin string) (*contract.ValueEstimate, error) {
	var estimate contract.ValueEstimate
	if err := c.get(ctx, "lookup:value:"+vin, &estimate); err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (c *RedisCache) SaveValue(ctx context.Context, estimate *contract.ValueEstimate) error {
	return c.set(ctx, "lookup:value:"+estimate.VIN, estimate)
}

func (c *RedisCache) GetSafety(ctx context.Context, year int, make, model string) (*contract.SafetyRecord, error) {
	var record contract.SafetyRecord
	if err := c.get(ctx, "lookup:safety:"+safetyKey(year, make, model), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *RedisCache) SaveSafety(ctx context.Context, record *contract.SafetyRecord) error {
	return c.set(ctx, "lookup:safety:"+safetyKey(record.Year, record.Make, record.Model), record)
}

func (c *RedisCache) get(ctx context.Context, key string, out any) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("unmarshal cached lookup %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal lookup %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
