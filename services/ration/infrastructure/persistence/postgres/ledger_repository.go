package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/database"
	"github.com/ghuser/messhall/pkg/events"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	domainevents "github.com/ghuser/messhall/services/ration/domain/events"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Lock contention retry bounds for Withdraw. The batch rows are locked with
// FOR UPDATE NOWAIT; a busy product retries a few times before surfacing
// ErrConcurrencyConflict, so a withdrawal never blocks indefinitely.
const (
	withdrawMaxAttempts = 3
	withdrawRetryDelay  = 50 * time.Millisecond
)

// Postgres error codes that mean another withdrawal holds the batch rows.
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Verify interface compliance.
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository implements repositories.LedgerRepository against
// PostgreSQL. Withdraw and Reverse run their scan-and-mutate sequence in one
// transaction with the product's batch rows locked, so two concurrent
// withdrawals can never deplete the same snapshot.
type LedgerRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewLedgerRepository returns a LedgerRepository backed by the given
// connection pool and event bus. The bus publishes withdrawal events inside
// the mutating transaction; it may be nil in tests.
func NewLedgerRepository(db *database.Database, bus *events.EventBus) *LedgerRepository {
	return &LedgerRepository{db: db, bus: bus}
}

// CreateBatch records a new received lot.
func (r *LedgerRepository) CreateBatch(ctx context.Context, batch *models.InventoryBatch) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO inventory_batches (id, product_id, remaining, received, unit_cost, entry_date, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		batch.ID, batch.ProductID, batch.Remaining.String(), batch.Received.String(),
		batch.UnitCost.String(), batch.EntryDate, batch.ExpiryDate, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetBatch returns one batch by id.
func (r *LedgerRepository) GetBatch(ctx context.Context, id uuid.UUID) (*models.InventoryBatch, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, product_id, remaining, received, unit_cost, entry_date, expiry_date, created_at
		FROM inventory_batches WHERE id = $1`, id)
	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rationdomain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("query batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns every batch for the product in FIFO depletion order,
// including zeroed batches kept for audit.
func (r *LedgerRepository) ListBatches(ctx context.Context, productID uuid.UUID) ([]models.InventoryBatch, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, product_id, remaining, received, unit_cost, entry_date, expiry_date, created_at
		FROM inventory_batches
		WHERE product_id = $1
		ORDER BY expiry_date ASC, entry_date ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

// AvailableQuantity sums non-expired batch remainders for the product.
func (r *LedgerRepository) AvailableQuantity(ctx context.Context, productID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	var total string
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining), 0)
		FROM inventory_batches
		WHERE product_id = $1 AND remaining > 0 AND expiry_date >= $2`,
		productID, asOf,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum availability: %w", err)
	}
	qty, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse availability: %w", err)
	}
	return qty, nil
}

// Withdraw atomically depletes batches first-expiring-first to cover
// rec.Quantity, persists the record and its per-batch decrements, and
// publishes a WithdrawalRecordedEvent in the same transaction. On lock
// contention it retries up to withdrawMaxAttempts before returning
// ErrConcurrencyConflict; insufficiency rolls everything back.
func (r *LedgerRepository) Withdraw(ctx context.Context, rec *models.WithdrawalRecord) ([]models.BatchDecrement, error) {
	var decs []models.BatchDecrement
	delay := withdrawRetryDelay
	for attempt := 1; ; attempt++ {
		err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			decs, txErr = r.withdrawTx(ctx, tx, rec)
			return txErr
		})
		if err == nil {
			return decs, nil
		}
		if !isLockContention(err) {
			return nil, err
		}
		if attempt >= withdrawMaxAttempts {
			return nil, fmt.Errorf("ledger busy after %d attempts: %w", attempt, rationdomain.ErrConcurrencyConflict)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (r *LedgerRepository) withdrawTx(ctx context.Context, tx *sql.Tx, rec *models.WithdrawalRecord) ([]models.BatchDecrement, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, product_id, remaining, received, unit_cost, entry_date, expiry_date, created_at
		FROM inventory_batches
		WHERE product_id = $1 AND remaining > 0 AND expiry_date >= $2
		ORDER BY expiry_date ASC, entry_date ASC
		FOR UPDATE NOWAIT`,
		rec.ProductID, rec.Date)
	if err != nil {
		return nil, fmt.Errorf("lock batches: %w", err)
	}
	batches, err := collectBatches(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	decs, err := domainsvcs.PlanDepletion(batches, rec.Quantity, rec.Date)
	if err != nil {
		return nil, err
	}

	for i := range decs {
		decs[i].WithdrawalID = rec.ID
		if _, err := tx.ExecContext(ctx, `
			UPDATE inventory_batches SET remaining = remaining - $1 WHERE id = $2`,
			decs[i].Quantity.String(), decs[i].BatchID); err != nil {
			return nil, fmt.Errorf("decrement batch %s: %w", decs[i].BatchID, err)
		}
	}

	if err := insertWithdrawal(ctx, tx, rec); err != nil {
		return nil, err
	}
	for _, dec := range decs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO withdrawal_decrements (withdrawal_id, batch_id, quantity)
			VALUES ($1, $2, $3)`,
			dec.WithdrawalID, dec.BatchID, dec.Quantity.String()); err != nil {
			return nil, fmt.Errorf("insert decrement: %w", err)
		}
	}

	if r.bus != nil {
		if err := r.publishRecorded(tx, rec); err != nil {
			return nil, fmt.Errorf("publish withdrawal recorded: %w", err)
		}
	}
	return decs, nil
}

// Reverse restores the exact per-batch quantities a withdrawal removed and
// deletes the record, publishing a WithdrawalReversedEvent in the same
// transaction. The restore is guarded against pushing a batch above its
// received quantity.
func (r *LedgerRepository) Reverse(ctx context.Context, withdrawalID uuid.UUID) (*models.WithdrawalRecord, error) {
	var rec *models.WithdrawalRecord
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, type, unit_id, product_id, quantity, date, receiver, plan_week, plan_year, created_at
			FROM withdrawals WHERE id = $1 AND type = 'actual'
			FOR UPDATE`, withdrawalID)
		var scanErr error
		rec, scanErr = scanWithdrawal(row)
		if scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return rationdomain.ErrWithdrawalNotFound
			}
			return fmt.Errorf("query withdrawal: %w", scanErr)
		}

		decRows, err := tx.QueryContext(ctx, `
			SELECT withdrawal_id, batch_id, quantity
			FROM withdrawal_decrements WHERE withdrawal_id = $1`, withdrawalID)
		if err != nil {
			return fmt.Errorf("query decrements: %w", err)
		}
		decs, err := collectDecrements(decRows)
		decRows.Close()
		if err != nil {
			return err
		}

		for _, dec := range decs {
			res, err := tx.ExecContext(ctx, `
				UPDATE inventory_batches
				SET remaining = remaining + $1
				WHERE id = $2 AND remaining + $1 <= received`,
				dec.Quantity.String(), dec.BatchID)
			if err != nil {
				return fmt.Errorf("restore batch %s: %w", dec.BatchID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("restore batch %s: %w", dec.BatchID, err)
			}
			if n == 0 {
				return rationdomain.ErrBatchOverfill
			}
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM withdrawal_decrements WHERE withdrawal_id = $1`, withdrawalID); err != nil {
			return fmt.Errorf("delete decrements: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM withdrawals WHERE id = $1`, withdrawalID); err != nil {
			return fmt.Errorf("delete withdrawal: %w", err)
		}

		if r.bus != nil {
			if err := r.publishReversed(tx, rec); err != nil {
				return fmt.Errorf("publish withdrawal reversed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Decrements returns the audit rows recorded by a withdrawal.
func (r *LedgerRepository) Decrements(ctx context.Context, withdrawalID uuid.UUID) ([]models.BatchDecrement, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT withdrawal_id, batch_id, quantity
		FROM withdrawal_decrements WHERE withdrawal_id = $1`, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("query decrements: %w", err)
	}
	defer rows.Close()
	return collectDecrements(rows)
}

func (r *LedgerRepository) publishRecorded(tx *sql.Tx, rec *models.WithdrawalRecord) error {
	event := domainevents.WithdrawalRecordedEvent{
		EventID:      uuid.New(),
		Version:      1,
		WithdrawalID: rec.ID,
		ProductID:    rec.ProductID,
		UnitID:       rec.UnitID,
		Quantity:     rec.Quantity,
		Date:         rec.Date,
		OccurredAt:   time.Now().UTC(),
	}
	return r.publish(tx, domainevents.TopicWithdrawalRecorded, event, event.EventID)
}

func (r *LedgerRepository) publishReversed(tx *sql.Tx, rec *models.WithdrawalRecord) error {
	event := domainevents.WithdrawalReversedEvent{
		EventID:      uuid.New(),
		Version:      1,
		WithdrawalID: rec.ID,
		ProductID:    rec.ProductID,
		Quantity:     rec.Quantity,
		Date:         rec.Date,
		OccurredAt:   time.Now().UTC(),
	}
	return r.publish(tx, domainevents.TopicWithdrawalReversed, event, event.EventID)
}

func (r *LedgerRepository) publish(tx *sql.Tx, topic string, event any, eventID uuid.UUID) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", eventID.String())
	msg.Metadata.Set("event_version", "1")
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(topic, msg)
}

// isLockContention reports whether err is a Postgres lock/serialization
// failure worth retrying.
func isLockContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
