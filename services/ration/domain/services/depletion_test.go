package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBatch(remaining string, entry, expiry time.Time) models.InventoryBatch {
	qty := decimal.RequireFromString(remaining)
	return models.InventoryBatch{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		Remaining:  qty,
		Received:   qty,
		EntryDate:  entry,
		ExpiryDate: expiry,
	}
}

func TestPlanDepletion_FIFOOrder(t *testing.T) {
	first := testBatch("5", day(2026, 1, 1), day(2026, 2, 1))
	second := testBatch("5", day(2026, 1, 5), day(2026, 2, 10))
	third := testBatch("5", day(2026, 1, 10), day(2026, 2, 20))

	// Shuffled input: the plan must still drain by expiry ascending.
	decs, err := PlanDepletion([]models.InventoryBatch{third, first, second}, decimal.NewFromInt(7), day(2026, 1, 15))
	if err != nil {
		t.Fatalf("PlanDepletion() error = %v", err)
	}

	if len(decs) != 2 {
		t.Fatalf("expected 2 decrements, got %d", len(decs))
	}
	if decs[0].BatchID != first.ID || !decs[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("first decrement = (%s, %s), want (%s, 5)", decs[0].BatchID, decs[0].Quantity, first.ID)
	}
	if decs[1].BatchID != second.ID || !decs[1].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("second decrement = (%s, %s), want (%s, 2)", decs[1].BatchID, decs[1].Quantity, second.ID)
	}
}

func TestPlanDepletion_ExpiryTieBrokenByEntryDate(t *testing.T) {
	expiry := day(2026, 2, 1)
	older := testBatch("3", day(2026, 1, 1), expiry)
	newer := testBatch("10", day(2026, 1, 20), expiry)

	decs, err := PlanDepletion([]models.InventoryBatch{newer, older}, decimal.NewFromInt(5), day(2026, 1, 25))
	if err != nil {
		t.Fatalf("PlanDepletion() error = %v", err)
	}

	if len(decs) != 2 {
		t.Fatalf("expected 2 decrements, got %d", len(decs))
	}
	if decs[0].BatchID != older.ID || !decs[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("first decrement should drain the older entry: got (%s, %s)", decs[0].BatchID, decs[0].Quantity)
	}
	if decs[1].BatchID != newer.ID || !decs[1].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("second decrement = (%s, %s), want (%s, 2)", decs[1].BatchID, decs[1].Quantity, newer.ID)
	}
}

func TestPlanDepletion_InsufficientStockFailsWhole(t *testing.T) {
	a := testBatch("4", day(2026, 1, 1), day(2026, 3, 1))
	b := testBatch("6", day(2026, 1, 2), day(2026, 3, 1))

	_, err := PlanDepletion([]models.InventoryBatch{a, b}, decimal.NewFromInt(15), day(2026, 1, 15))
	if !errors.Is(err, rationdomain.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	var insufficient *rationdomain.InsufficientInventoryError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *InsufficientInventoryError, got %T", err)
	}
	if !insufficient.Available.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Available = %s, want 10", insufficient.Available)
	}
	if !insufficient.Requested.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Requested = %s, want 15", insufficient.Requested)
	}
}

func TestPlanDepletion_ExpiredBatchesIgnored(t *testing.T) {
	expired := testBatch("100", day(2026, 1, 1), day(2026, 1, 10))
	fresh := testBatch("3", day(2026, 1, 5), day(2026, 3, 1))

	asOf := day(2026, 1, 20)
	decs, err := PlanDepletion([]models.InventoryBatch{expired, fresh}, decimal.NewFromInt(3), asOf)
	if err != nil {
		t.Fatalf("PlanDepletion() error = %v", err)
	}
	if len(decs) != 1 || decs[0].BatchID != fresh.ID {
		t.Fatalf("expected a single decrement from the fresh batch, got %+v", decs)
	}

	// The expired stock must not count toward availability either.
	_, err = PlanDepletion([]models.InventoryBatch{expired, fresh}, decimal.NewFromInt(4), asOf)
	if !errors.Is(err, rationdomain.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}
}

func TestPlanDepletion_NonPositiveQuantity(t *testing.T) {
	batches := []models.InventoryBatch{testBatch("5", day(2026, 1, 1), day(2026, 3, 1))}

	for _, qty := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-2)} {
		if _, err := PlanDepletion(batches, qty, day(2026, 1, 15)); !errors.Is(err, rationdomain.ErrInvalidQuantity) {
			t.Errorf("PlanDepletion(qty=%s) error = %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestPlanDepletion_DoesNotMutateInput(t *testing.T) {
	batches := []models.InventoryBatch{
		testBatch("5", day(2026, 1, 1), day(2026, 2, 1)),
		testBatch("5", day(2026, 1, 5), day(2026, 2, 10)),
	}

	if _, err := PlanDepletion(batches, decimal.NewFromInt(7), day(2026, 1, 15)); err != nil {
		t.Fatalf("PlanDepletion() error = %v", err)
	}

	for i, b := range batches {
		if !b.Remaining.Equal(decimal.NewFromInt(5)) {
			t.Errorf("batch %d remaining = %s, want 5 (input must not be mutated)", i, b.Remaining)
		}
	}
}

func TestPlanDepletion_PartialThenFullBatch(t *testing.T) {
	// 3 kg expiring soon plus 10 kg expiring later; withdrawing 5 kg takes
	// all 3 kg from the first and 2 kg from the second.
	soon := testBatch("3", day(2026, 1, 1), day(2026, 1, 20))
	later := testBatch("10", day(2026, 1, 2), day(2026, 3, 1))

	decs, err := PlanDepletion([]models.InventoryBatch{later, soon}, decimal.NewFromInt(5), day(2026, 1, 10))
	if err != nil {
		t.Fatalf("PlanDepletion() error = %v", err)
	}
	if len(decs) != 2 {
		t.Fatalf("expected 2 decrements, got %d", len(decs))
	}
	if decs[0].BatchID != soon.ID || !decs[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("first decrement = (%s, %s), want all 3 from the soon-expiring batch", decs[0].BatchID, decs[0].Quantity)
	}
	if decs[1].BatchID != later.ID || !decs[1].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("second decrement = (%s, %s), want 2 from the later batch", decs[1].BatchID, decs[1].Quantity)
	}
}
