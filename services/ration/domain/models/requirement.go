package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientRequirement is the aggregated quantity of one product required
// for one day, derived from the menu. Dishes lists every dish that
// referenced the product, de-duplicated, for operator traceability.
type IngredientRequirement struct {
	Date        time.Time
	ProductID   uuid.UUID
	ProductName string
	Unit        string
	CategoryID  uuid.UUID
	Quantity    decimal.Decimal
	Dishes      []string
}

// VarianceRow is one line of a planned-vs-actual comparison for a
// (date, unit, product) key. VariancePercent is nil when nothing was
// planned, since the ratio is undefined.
type VarianceRow struct {
	Date            time.Time
	UnitID          uuid.UUID
	ProductID       uuid.UUID
	Planned         decimal.Decimal
	Actual          decimal.Decimal
	Variance        decimal.Decimal
	VariancePercent *decimal.Decimal
}
