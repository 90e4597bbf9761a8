package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/logger"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
)

// WithdrawalService handles actual withdrawals: physical issues that deplete
// the inventory ledger first-expiring-first-out. All ledger mutation is
// delegated to the LedgerRepository, which applies each withdrawal or
// reversal atomically.
type WithdrawalService struct {
	ledger      repositories.LedgerRepository
	withdrawals repositories.WithdrawalRepository
	products    repositories.ProductCatalog
	units       repositories.UnitRegistry
	log         logger.Logger
}

// NewWithdrawalService wires a WithdrawalService.
func NewWithdrawalService(
	ledger repositories.LedgerRepository,
	withdrawals repositories.WithdrawalRepository,
	products repositories.ProductCatalog,
	units repositories.UnitRegistry,
	log logger.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		ledger:      ledger,
		withdrawals: withdrawals,
		products:    products,
		units:       units,
		log:         log,
	}
}

// CreateActual records a physical issue to a unit. The ledger decrement and
// the record insert happen in one atomic operation; on
// InsufficientInventoryError nothing is committed.
func (s *WithdrawalService) CreateActual(ctx context.Context, unitID, productID uuid.UUID, qty decimal.Decimal, date time.Time, receiver string) (*models.WithdrawalRecord, error) {
	if !qty.IsPositive() {
		return nil, rationdomain.ErrInvalidQuantity
	}
	if err := s.checkRefs(ctx, unitID, productID); err != nil {
		return nil, err
	}

	rec := models.NewActualWithdrawal(unitID, productID, qty, date, receiver)
	decs, err := s.ledger.Withdraw(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	s.log.InfoContext(ctx, "actual withdrawal recorded",
		"withdrawal_id", rec.ID,
		"product_id", productID,
		"unit_id", unitID,
		"quantity", qty.String(),
		"batches_touched", len(decs),
	)
	return rec, nil
}

// UpdateActual edits an actual withdrawal by reversing the old issue in full
// and performing a fresh withdrawal with the new parameters. When the new
// withdrawal fails on insufficient stock, the reversal stays applied and the
// old record is gone — the ledger ends up as if only the reversal happened.
func (s *WithdrawalService) UpdateActual(ctx context.Context, id, unitID, productID uuid.UUID, qty decimal.Decimal, date time.Time, receiver string) (*models.WithdrawalRecord, error) {
	if !qty.IsPositive() {
		return nil, rationdomain.ErrInvalidQuantity
	}
	if err := s.checkRefs(ctx, unitID, productID); err != nil {
		return nil, err
	}

	old, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load withdrawal: %w", err)
	}
	if old.Type != models.WithdrawalActual {
		return nil, rationdomain.ErrWithdrawalNotFound
	}

	if _, err := s.ledger.Reverse(ctx, id); err != nil {
		return nil, fmt.Errorf("reverse old withdrawal: %w", err)
	}

	rec := models.NewActualWithdrawal(unitID, productID, qty, date, receiver)
	rec.ID = id
	if _, err := s.ledger.Withdraw(ctx, rec); err != nil {
		s.log.WarnContext(ctx, "withdrawal edit failed after reversal; old issue stays reversed",
			"withdrawal_id", id, "error", err)
		return nil, fmt.Errorf("re-withdraw: %w", err)
	}
	return rec, nil
}

// DeleteActual reverses a withdrawal's ledger decrements and removes the record.
func (s *WithdrawalService) DeleteActual(ctx context.Context, id uuid.UUID) error {
	rec, err := s.ledger.Reverse(ctx, id)
	if err != nil {
		return fmt.Errorf("reverse withdrawal: %w", err)
	}
	s.log.InfoContext(ctx, "actual withdrawal reversed",
		"withdrawal_id", id,
		"product_id", rec.ProductID,
		"quantity", rec.Quantity.String(),
	)
	return nil
}

// List returns the week's withdrawal records, optionally filtered by type.
func (s *WithdrawalService) List(ctx context.Context, week, year int, typ models.WithdrawalType) ([]models.WithdrawalRecord, error) {
	recs, err := s.withdrawals.ListForPeriod(ctx, week, year, uuid.Nil, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	if typ == "" {
		return recs, nil
	}
	filtered := recs[:0]
	for _, rec := range recs {
		if rec.Type == typ {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// RecordIntake creates a ledger batch from an approved supply intake.
func (s *WithdrawalService) RecordIntake(ctx context.Context, productID uuid.UUID, qty, unitCost decimal.Decimal, entryDate, expiryDate time.Time) (*models.InventoryBatch, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	batch, err := models.NewInventoryBatch(productID, qty, unitCost, entryDate, expiryDate)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

func (s *WithdrawalService) checkRefs(ctx context.Context, unitID, productID uuid.UUID) error {
	if _, err := s.units.GetUnit(ctx, unitID); err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	return nil
}
