package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalType distinguishes computed ration plans from physical issues.
type WithdrawalType string

const (
	// WithdrawalPlanned is a menu-derived ration requirement; it never
	// touches the inventory ledger.
	WithdrawalPlanned WithdrawalType = "planned"

	// WithdrawalActual is a physically issued quantity whose creation
	// performed a FIFO ledger decrement.
	WithdrawalActual WithdrawalType = "actual"
)

// WithdrawalRecord represents one movement of product out of the station to a
// receiving unit, either planned (allocator output) or actual (operator issue).
type WithdrawalRecord struct {
	ID        uuid.UUID
	Type      WithdrawalType
	UnitID    uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Date      time.Time
	Receiver  string // person who signed for an actual issue; empty for planned
	PlanWeek  int    // ISO week linkage; zero for actual records
	PlanYear  int
	CreatedAt time.Time
}

// NewPlannedWithdrawal builds a planned record for one (date, unit, product) key.
func NewPlannedWithdrawal(unitID, productID uuid.UUID, qty decimal.Decimal, date time.Time, week, year int) *WithdrawalRecord {
	return &WithdrawalRecord{
		ID:        uuid.New(),
		Type:      WithdrawalPlanned,
		UnitID:    unitID,
		ProductID: productID,
		Quantity:  qty,
		Date:      date,
		PlanWeek:  week,
		PlanYear:  year,
		CreatedAt: time.Now().UTC(),
	}
}

// NewActualWithdrawal builds an actual record; persisting it triggers the
// FIFO decrement in the same transaction.
func NewActualWithdrawal(unitID, productID uuid.UUID, qty decimal.Decimal, date time.Time, receiver string) *WithdrawalRecord {
	return &WithdrawalRecord{
		ID:        uuid.New(),
		Type:      WithdrawalActual,
		UnitID:    unitID,
		ProductID: productID,
		Quantity:  qty,
		Date:      date,
		Receiver:  receiver,
		CreatedAt: time.Now().UTC(),
	}
}

// BatchDecrement records how much one withdrawal took from one batch.
// Reversals replay these rows so stock returns to exactly the batches it
// came from.
type BatchDecrement struct {
	WithdrawalID uuid.UUID
	BatchID      uuid.UUID
	Quantity     decimal.Decimal
}
