package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the ration domain. Use errors.Is() to check these.
var (
	// ErrInsufficientInventory indicates total on-hand stock cannot satisfy a withdrawal.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrConcurrencyConflict indicates the ledger rows for a product stayed
	// contended across all retry attempts. Callers should retry the whole withdrawal.
	ErrConcurrencyConflict = errors.New("concurrent ledger conflict")

	// ErrWithdrawalNotFound indicates the referenced withdrawal record does not exist.
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrBatchNotFound indicates the referenced inventory batch does not exist.
	ErrBatchNotFound = errors.New("inventory batch not found")

	// ErrProductNotFound indicates the referenced product does not exist in the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrUnitNotFound indicates the referenced receiving unit does not exist.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrInvalidMenuData indicates the menu structure for a day is malformed.
	ErrInvalidMenuData = errors.New("invalid menu data")

	// ErrInvalidQuantity indicates a non-positive or otherwise unusable quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrBatchOverfill indicates a reversal would push a batch above its
	// originally received quantity.
	ErrBatchOverfill = errors.New("reversal exceeds received batch quantity")
)

// InsufficientInventoryError reports how much stock was available versus
// requested when a withdrawal fails. Matches ErrInsufficientInventory
// under errors.Is().
type InsufficientInventoryError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: available %s, requested %s",
		e.Available.String(), e.Requested.String())
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// InvalidMenuDataError identifies the day and dish that made an aggregation fail.
// Matches ErrInvalidMenuData under errors.Is().
type InvalidMenuDataError struct {
	Day    string
	Dish   string
	Reason string
}

func (e *InvalidMenuDataError) Error() string {
	if e.Dish == "" {
		return fmt.Sprintf("invalid menu data for %s: %s", e.Day, e.Reason)
	}
	return fmt.Sprintf("invalid menu data for %s, dish %q: %s", e.Day, e.Dish, e.Reason)
}

func (e *InvalidMenuDataError) Unwrap() error {
	return ErrInvalidMenuData
}
