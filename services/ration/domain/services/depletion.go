package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
)

// PlanDepletion computes the first-expiring-first-out decrements needed to
// withdraw requested from the given batches, effective asOf. Batches are
// consumed in ascending expiry order, ties broken by entry date ascending,
// so the oldest stock within the same expiry goes first. Expired and empty
// batches are ignored.
//
// The input is not mutated; callers apply the returned decrements inside
// their own transaction. When total usable stock is short the plan fails
// whole with an InsufficientInventoryError and nothing is to be applied.
func PlanDepletion(batches []models.InventoryBatch, requested decimal.Decimal, asOf time.Time) ([]models.BatchDecrement, error) {
	if !requested.IsPositive() {
		return nil, rationdomain.ErrInvalidQuantity
	}

	usable := make([]models.InventoryBatch, 0, len(batches))
	available := decimal.Zero
	for _, b := range batches {
		if b.Usable(asOf) {
			usable = append(usable, b)
			available = available.Add(b.Remaining)
		}
	}

	if available.LessThan(requested) {
		return nil, &rationdomain.InsufficientInventoryError{
			Available: available,
			Requested: requested,
		}
	}

	sort.SliceStable(usable, func(i, j int) bool {
		if !usable[i].ExpiryDate.Equal(usable[j].ExpiryDate) {
			return usable[i].ExpiryDate.Before(usable[j].ExpiryDate)
		}
		return usable[i].EntryDate.Before(usable[j].EntryDate)
	})

	var decs []models.BatchDecrement
	still := requested
	for _, b := range usable {
		if still.IsZero() {
			break
		}
		take := decimal.Min(b.Remaining, still)
		decs = append(decs, models.BatchDecrement{
			BatchID:  b.ID,
			Quantity: take,
		})
		still = still.Sub(take)
	}
	return decs, nil
}
