package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

// LedgerRepository owns the inventory batch ledger and the actual-withdrawal
// lifecycle. Withdraw and Reverse are the only operations that mutate batch
// quantities; both are atomic.
type LedgerRepository interface {
	// CreateBatch records a new received lot from an approved supply intake.
	CreateBatch(ctx context.Context, batch *models.InventoryBatch) error

	// GetBatch returns one batch by id, or ErrBatchNotFound.
	GetBatch(ctx context.Context, id uuid.UUID) (*models.InventoryBatch, error)

	// ListBatches returns every batch for the product, including zeroed ones,
	// ordered by expiry date then entry date ascending.
	ListBatches(ctx context.Context, productID uuid.UUID) ([]models.InventoryBatch, error)

	// AvailableQuantity sums the remainders of the product's batches that have
	// not expired before asOf.
	AvailableQuantity(ctx context.Context, productID uuid.UUID, asOf time.Time) (decimal.Decimal, error)

	// Withdraw atomically depletes the product's batches first-expiring-first
	// to cover rec.Quantity, persists rec and its per-batch decrements, and
	// returns the decrements. On InsufficientInventoryError or
	// ErrConcurrencyConflict no ledger change is committed.
	Withdraw(ctx context.Context, rec *models.WithdrawalRecord) ([]models.BatchDecrement, error)

	// Reverse restores the exact per-batch quantities a withdrawal removed and
	// deletes the withdrawal record. Returns the reversed record, or
	// ErrWithdrawalNotFound.
	Reverse(ctx context.Context, withdrawalID uuid.UUID) (*models.WithdrawalRecord, error)

	// Decrements returns the per-batch audit rows recorded by a withdrawal.
	Decrements(ctx context.Context, withdrawalID uuid.UUID) ([]models.BatchDecrement, error)
}

// WithdrawalRepository reads and writes withdrawal records without touching
// the batch ledger. Planned records are the allocator's persisted output.
type WithdrawalRepository interface {
	// GetByID returns one withdrawal record, or ErrWithdrawalNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRecord, error)

	// UpsertPlanned persists planned records keyed by (date, unit, product).
	// Existing keys are skipped when overwrite is false and replaced in place
	// when true. Returns the number of records newly created.
	UpsertPlanned(ctx context.Context, recs []*models.WithdrawalRecord, overwrite bool) (int, error)

	// ListForPeriod returns all records, planned and actual, whose date falls
	// within the given ISO week. Zero filter values match everything.
	ListForPeriod(ctx context.Context, week, year int, unitID, productID uuid.UUID) ([]models.WithdrawalRecord, error)
}
