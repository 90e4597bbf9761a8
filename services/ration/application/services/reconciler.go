package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/logger"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Reconciler turns the weekly menu into planned withdrawal records and
// compares them against actual issues. Planned generation never mutates the
// ledger, so it can run concurrently with withdrawals.
type Reconciler struct {
	menu        repositories.MenuProvider
	units       repositories.UnitRegistry
	withdrawals repositories.WithdrawalRepository
	aggregator  *domainsvcs.Aggregator
	log         logger.Logger
}

// NewReconciler wires a Reconciler.
func NewReconciler(
	menu repositories.MenuProvider,
	units repositories.UnitRegistry,
	withdrawals repositories.WithdrawalRepository,
	aggregator *domainsvcs.Aggregator,
	log logger.Logger,
) *Reconciler {
	return &Reconciler{
		menu:        menu,
		units:       units,
		withdrawals: withdrawals,
		aggregator:  aggregator,
		log:         log,
	}
}

// GeneratePlanned aggregates every day of the week's menu, allocates each
// requirement across units by headcount, and persists one planned record per
// (date, unit, product). Repeated calls with overwrite=false are idempotent:
// existing keys are skipped, never duplicated. Returns the number of records
// created plus any unmatched-ingredient warnings.
//
// Unit headcounts are re-read on every invocation since per-day overrides
// can change between runs.
func (r *Reconciler) GeneratePlanned(ctx context.Context, week, year int, overwrite bool) (int, []string, error) {
	days, err := r.menu.WeekMenu(ctx, week, year)
	if err != nil {
		return 0, nil, fmt.Errorf("load week menu: %w", err)
	}

	units, err := r.units.ListUnits(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list units: %w", err)
	}

	var recs []*models.WithdrawalRecord
	var warnings []string
	for _, day := range days {
		reqs, warns, err := r.aggregator.Aggregate(ctx, day)
		if err != nil {
			return 0, nil, fmt.Errorf("aggregate %s: %w", day.Date.Format("2006-01-02"), err)
		}
		warnings = append(warnings, warns...)

		for _, req := range reqs {
			shares := domainsvcs.Allocate(req.Quantity, units, day.Date)
			for _, unit := range units {
				recs = append(recs, models.NewPlannedWithdrawal(
					unit.ID, req.ProductID, shares[unit.ID], day.Date, week, year))
			}
		}
	}

	created, err := r.withdrawals.UpsertPlanned(ctx, recs, overwrite)
	if err != nil {
		return 0, nil, fmt.Errorf("persist planned records: %w", err)
	}

	r.log.InfoContext(ctx, "planned withdrawals generated",
		"week", week,
		"year", year,
		"overwrite", overwrite,
		"created", created,
		"warnings", len(warnings),
	)
	return created, warnings, nil
}

// Compare groups the week's planned and actual records by
// (date, unit, product) and computes variance = actual − planned. The
// variance percentage is nil when nothing was planned, since the ratio is
// undefined.
func (r *Reconciler) Compare(ctx context.Context, week, year int, unitID, productID uuid.UUID) ([]models.VarianceRow, error) {
	recs, err := r.withdrawals.ListForPeriod(ctx, week, year, unitID, productID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}

	type key struct {
		date    string
		unit    uuid.UUID
		product uuid.UUID
	}
	grouped := make(map[key]*models.VarianceRow)
	var order []key
	for _, rec := range recs {
		k := key{date: rec.Date.Format("2006-01-02"), unit: rec.UnitID, product: rec.ProductID}
		row, ok := grouped[k]
		if !ok {
			row = &models.VarianceRow{
				Date:      rec.Date,
				UnitID:    rec.UnitID,
				ProductID: rec.ProductID,
				Planned:   decimal.Zero,
				Actual:    decimal.Zero,
			}
			grouped[k] = row
			order = append(order, k)
		}
		switch rec.Type {
		case models.WithdrawalPlanned:
			row.Planned = row.Planned.Add(rec.Quantity)
		case models.WithdrawalActual:
			row.Actual = row.Actual.Add(rec.Quantity)
		}
	}

	rows := make([]models.VarianceRow, 0, len(order))
	for _, k := range order {
		row := grouped[k]
		row.Variance = row.Actual.Sub(row.Planned)
		if !row.Planned.IsZero() {
			pct := row.Variance.Mul(decimal.NewFromInt(100)).Div(row.Planned).Round(2)
			row.VariancePercent = &pct
		}
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].UnitID != rows[j].UnitID {
			return rows[i].UnitID.String() < rows[j].UnitID.String()
		}
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})
	return rows, nil
}
