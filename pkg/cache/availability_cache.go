package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AvailabilityTTL is the time-to-live for cached availability entries.
	// Short on purpose: the ledger is authoritative and the worker refreshes
	// entries on withdrawal events, so the TTL only bounds staleness when
	// events are delayed.
	AvailabilityTTL = 5 * time.Minute

	availabilityKeyPrefix = "avail"
)

// AvailabilityCache stores per-product available-quantity read models.
// Keys are scoped by the as-of date because expiry filtering makes
// availability date-dependent. Key format: "avail:{productID}:{YYYY-MM-DD}".
type AvailabilityCache struct {
	client *RedisClient
}

// NewAvailabilityCache creates an AvailabilityCache backed by the given RedisClient.
func NewAvailabilityCache(r *RedisClient) *AvailabilityCache {
	return &AvailabilityCache{client: r}
}

// Get retrieves a cached quantity for (product, asOf date).
// Returns redis.Nil error when the key does not exist or has expired.
func (c *AvailabilityCache) Get(ctx context.Context, productID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	val, err := c.client.Client().Get(ctx, c.key(productID, asOf)).Result()
	if err != nil {
		return decimal.Zero, err
	}
	qty, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cache parse quantity: %w", err)
	}
	return qty, nil
}

// Set writes a quantity for (product, asOf date) with the standard TTL.
func (c *AvailabilityCache) Set(ctx context.Context, productID uuid.UUID, asOf time.Time, qty decimal.Decimal) error {
	if err := c.client.Client().Set(ctx, c.key(productID, asOf), qty.String(), AvailabilityTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes the cached quantity for (product, asOf date).
// Called by the worker when a withdrawal event changes the ledger.
func (c *AvailabilityCache) Invalidate(ctx context.Context, productID uuid.UUID, asOf time.Time) error {
	if err := c.client.Client().Del(ctx, c.key(productID, asOf)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// key builds the Redis key: "avail:{productID}:{YYYY-MM-DD}"
func (c *AvailabilityCache) key(productID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("%s:%s:%s", availabilityKeyPrefix, productID, asOf.Format("2006-01-02"))
}
