package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/messhall/pkg/cache"
	"github.com/ghuser/messhall/pkg/logger"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
)

// AvailabilityService answers "how much of this product can be issued as of
// a date" using a read-through Redis cache over the batch ledger:
//  1. Check Redis first.
//  2. On cache miss (or cache error), sum non-expired batch remainders.
//  3. Asynchronously warm the cache with the ledger result.
//
// The ledger stays authoritative; the FIFO engine never consults this cache.
type AvailabilityService struct {
	ledger   repositories.LedgerRepository
	products repositories.ProductCatalog
	cache    *pkgcache.AvailabilityCache
	log      logger.Logger
}

// NewAvailabilityService wires an AvailabilityService. cache may be nil,
// in which case every read goes to the ledger.
func NewAvailabilityService(
	ledger repositories.LedgerRepository,
	products repositories.ProductCatalog,
	cache *pkgcache.AvailabilityCache,
	log logger.Logger,
) *AvailabilityService {
	return &AvailabilityService{ledger: ledger, products: products, cache: cache, log: log}
}

// Available returns the total non-expired quantity of the product as of the
// given date. Returns ErrProductNotFound for an unknown product.
func (s *AvailabilityService) Available(ctx context.Context, productID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return decimal.Zero, fmt.Errorf("check product: %w", err)
	}

	if s.cache != nil {
		if qty, err := s.cache.Get(ctx, productID, asOf); err == nil {
			return qty, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "availability cache read failed; falling back to ledger",
				"product_id", productID, "error", err)
		}
	}

	qty, err := s.ledger.AvailableQuantity(ctx, productID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger availability: %w", err)
	}

	if s.cache != nil {
		go func() {
			_ = s.cache.Set(context.Background(), productID, asOf, qty)
		}()
	}
	return qty, nil
}
