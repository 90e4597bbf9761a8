// Package postgres implements the ration repositories against PostgreSQL.
// Quantities are stored as NUMERIC and scanned through strings into
// shopspring decimals so no binary floating point touches the math.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.InventoryBatch, error) {
	var b models.InventoryBatch
	var remaining, received, unitCost string
	if err := row.Scan(&b.ID, &b.ProductID, &remaining, &received, &unitCost,
		&b.EntryDate, &b.ExpiryDate, &b.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.Remaining, err = decimal.NewFromString(remaining); err != nil {
		return nil, fmt.Errorf("parse remaining: %w", err)
	}
	if b.Received, err = decimal.NewFromString(received); err != nil {
		return nil, fmt.Errorf("parse received: %w", err)
	}
	if b.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
		return nil, fmt.Errorf("parse unit cost: %w", err)
	}
	return &b, nil
}

func collectBatches(rows *sql.Rows) ([]models.InventoryBatch, error) {
	var batches []models.InventoryBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

func scanWithdrawal(row rowScanner) (*models.WithdrawalRecord, error) {
	var rec models.WithdrawalRecord
	var qty string
	var receiver sql.NullString
	if err := row.Scan(&rec.ID, &rec.Type, &rec.UnitID, &rec.ProductID, &qty,
		&rec.Date, &receiver, &rec.PlanWeek, &rec.PlanYear, &rec.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
		return nil, fmt.Errorf("parse quantity: %w", err)
	}
	rec.Receiver = receiver.String
	return &rec, nil
}

func collectWithdrawals(rows *sql.Rows) ([]models.WithdrawalRecord, error) {
	var recs []models.WithdrawalRecord
	for rows.Next() {
		rec, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawals: %w", err)
	}
	return recs, nil
}

func collectDecrements(rows *sql.Rows) ([]models.BatchDecrement, error) {
	var decs []models.BatchDecrement
	for rows.Next() {
		var dec models.BatchDecrement
		var qty string
		if err := rows.Scan(&dec.WithdrawalID, &dec.BatchID, &qty); err != nil {
			return nil, fmt.Errorf("scan decrement: %w", err)
		}
		var err error
		if dec.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse decrement quantity: %w", err)
		}
		decs = append(decs, dec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decrements: %w", err)
	}
	return decs, nil
}

func insertWithdrawal(ctx context.Context, tx *sql.Tx, rec *models.WithdrawalRecord) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawals (id, type, unit_id, product_id, quantity, date, receiver, plan_week, plan_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.Type, rec.UnitID, rec.ProductID, rec.Quantity.String(),
		rec.Date, rec.Receiver, rec.PlanWeek, rec.PlanYear, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}
