package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/messhall/pkg/database"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Verify interface compliance.
var _ repositories.WithdrawalRepository = (*WithdrawalRepository)(nil)

// WithdrawalRepository implements repositories.WithdrawalRepository against
// PostgreSQL. It reads and writes withdrawal records only; batch mutation
// belongs to LedgerRepository.
type WithdrawalRepository struct {
	db *database.Database
}

// NewWithdrawalRepository returns a WithdrawalRepository backed by the given pool.
func NewWithdrawalRepository(db *database.Database) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// GetByID returns one withdrawal record.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRecord, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, type, unit_id, product_id, quantity, date, receiver, plan_week, plan_year, created_at
		FROM withdrawals WHERE id = $1`, id)
	rec, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rationdomain.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("query withdrawal: %w", err)
	}
	return rec, nil
}

// UpsertPlanned persists planned records keyed by (date, unit, product) in
// one transaction. Existing keys are skipped when overwrite is false and
// replaced in place when true, so repeated generation never duplicates.
func (r *WithdrawalRepository) UpsertPlanned(ctx context.Context, recs []*models.WithdrawalRecord, overwrite bool) (int, error) {
	created := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			var existingID uuid.UUID
			err := tx.QueryRowContext(ctx, `
				SELECT id FROM withdrawals
				WHERE type = 'planned' AND unit_id = $1 AND product_id = $2 AND date = $3
				FOR UPDATE`,
				rec.UnitID, rec.ProductID, rec.Date).Scan(&existingID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if err := insertWithdrawal(ctx, tx, rec); err != nil {
					return err
				}
				created++
			case err != nil:
				return fmt.Errorf("check planned record: %w", err)
			case overwrite:
				if _, err := tx.ExecContext(ctx, `
					UPDATE withdrawals
					SET quantity = $1, plan_week = $2, plan_year = $3
					WHERE id = $4`,
					rec.Quantity.String(), rec.PlanWeek, rec.PlanYear, existingID); err != nil {
					return fmt.Errorf("replace planned record: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// ListForPeriod returns all records, planned and actual, dated within the
// given ISO week, optionally filtered by unit and product.
func (r *WithdrawalRepository) ListForPeriod(ctx context.Context, week, year int, unitID, productID uuid.UUID) ([]models.WithdrawalRecord, error) {
	from, to := domainsvcs.WeekBounds(week, year)

	query := `
		SELECT id, type, unit_id, product_id, quantity, date, receiver, plan_week, plan_year, created_at
		FROM withdrawals
		WHERE date >= $1 AND date < $2`
	args := []any{from, to.AddDate(0, 0, 1)}
	if unitID != uuid.Nil {
		args = append(args, unitID)
		query += fmt.Sprintf(" AND unit_id = $%d", len(args))
	}
	if productID != uuid.Nil {
		args = append(args, productID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}
