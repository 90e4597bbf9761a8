package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
)

// InventoryBatch is one received lot of one product in the station's ledger.
// Remaining is decremented by FIFO withdrawals and restored by reversals;
// it never drops below zero and never exceeds Received. Zeroed batches are
// kept for audit, not deleted.
type InventoryBatch struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Remaining  decimal.Decimal
	Received   decimal.Decimal
	UnitCost   decimal.Decimal
	EntryDate  time.Time
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// NewInventoryBatch constructs a batch from an approved supply intake.
func NewInventoryBatch(productID uuid.UUID, quantity, unitCost decimal.Decimal, entryDate, expiryDate time.Time) (*InventoryBatch, error) {
	if !quantity.IsPositive() {
		return nil, rationdomain.ErrInvalidQuantity
	}
	if quantity.Exponent() < -2 {
		quantity = quantity.Round(2)
	}
	return &InventoryBatch{
		ID:         uuid.New(),
		ProductID:  productID,
		Remaining:  quantity,
		Received:   quantity,
		UnitCost:   unitCost,
		EntryDate:  entryDate,
		ExpiryDate: expiryDate,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Usable reports whether the batch can supply a withdrawal effective asOf:
// it must hold stock and must not have expired before asOf.
func (b *InventoryBatch) Usable(asOf time.Time) bool {
	return b.Remaining.IsPositive() && !b.ExpiryDate.Before(asOf)
}

// Take removes up to want from the batch and returns the quantity actually
// taken, which is min(want, Remaining).
func (b *InventoryBatch) Take(want decimal.Decimal) decimal.Decimal {
	took := decimal.Min(want, b.Remaining)
	b.Remaining = b.Remaining.Sub(took)
	return took
}

// Restore re-adds a previously withdrawn quantity to the batch.
// Returns ErrBatchOverfill if the result would exceed Received.
func (b *InventoryBatch) Restore(qty decimal.Decimal) error {
	restored := b.Remaining.Add(qty)
	if restored.GreaterThan(b.Received) {
		return rationdomain.ErrBatchOverfill
	}
	b.Remaining = restored
	return nil
}

// Value returns the cost of the remaining stock in this batch.
func (b *InventoryBatch) Value() decimal.Decimal {
	return b.Remaining.Mul(b.UnitCost)
}
