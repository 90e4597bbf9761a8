package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustBatch(t *testing.T, s *Store, productID uuid.UUID, qty string, entry, expiry time.Time) *models.InventoryBatch {
	t.Helper()
	b, err := models.NewInventoryBatch(productID, decimal.RequireFromString(qty), decimal.Zero, entry, expiry)
	if err != nil {
		t.Fatalf("NewInventoryBatch() error = %v", err)
	}
	if err := s.CreateBatch(context.Background(), b); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	return b
}

func TestStore_WithdrawDepletesFIFO(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	productID := uuid.New()

	first := mustBatch(t, s, productID, "5", date(2026, 1, 1), date(2026, 2, 1))
	second := mustBatch(t, s, productID, "5", date(2026, 1, 5), date(2026, 2, 10))
	third := mustBatch(t, s, productID, "5", date(2026, 1, 10), date(2026, 2, 20))

	rec := models.NewActualWithdrawal(uuid.New(), productID, decimal.NewFromInt(7), date(2026, 1, 15), "sgt pepper")
	decs, err := s.Withdraw(ctx, rec)
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if len(decs) != 2 {
		t.Fatalf("expected 2 decrements, got %d", len(decs))
	}
	for _, dec := range decs {
		if dec.WithdrawalID != rec.ID {
			t.Errorf("decrement not stamped with withdrawal id: %+v", dec)
		}
	}

	wantRemaining := map[uuid.UUID]string{first.ID: "0", second.ID: "3", third.ID: "5"}
	for id, want := range wantRemaining {
		b, err := s.GetBatch(ctx, id)
		if err != nil {
			t.Fatalf("GetBatch() error = %v", err)
		}
		if !b.Remaining.Equal(decimal.RequireFromString(want)) {
			t.Errorf("batch remaining = %s, want %s", b.Remaining, want)
		}
	}
}

func TestStore_WithdrawInsufficientLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	productID := uuid.New()
	batch := mustBatch(t, s, productID, "10", date(2026, 1, 1), date(2026, 2, 1))

	rec := models.NewActualWithdrawal(uuid.New(), productID, decimal.NewFromInt(15), date(2026, 1, 15), "")
	if _, err := s.Withdraw(ctx, rec); !errors.Is(err, rationdomain.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	b, _ := s.GetBatch(ctx, batch.ID)
	if !b.Remaining.Equal(decimal.NewFromInt(10)) {
		t.Errorf("failed withdrawal must not touch batches, remaining = %s", b.Remaining)
	}
	if _, err := s.GetByID(ctx, rec.ID); !errors.Is(err, rationdomain.ErrWithdrawalNotFound) {
		t.Errorf("failed withdrawal must not be recorded, got %v", err)
	}
}

func TestStore_ReverseRestoresExactBatches(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	productID := uuid.New()

	first := mustBatch(t, s, productID, "3", date(2026, 1, 1), date(2026, 2, 1))
	second := mustBatch(t, s, productID, "10", date(2026, 1, 5), date(2026, 3, 1))

	rec := models.NewActualWithdrawal(uuid.New(), productID, decimal.NewFromInt(5), date(2026, 1, 15), "")
	if _, err := s.Withdraw(ctx, rec); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}

	got, err := s.Reverse(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Reverse() error = %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("Reverse() returned record %s, want %s", got.ID, rec.ID)
	}

	for _, b := range []*models.InventoryBatch{first, second} {
		stored, _ := s.GetBatch(ctx, b.ID)
		if !stored.Remaining.Equal(b.Received) {
			t.Errorf("batch remaining = %s, want %s restored", stored.Remaining, b.Received)
		}
	}

	if _, err := s.GetByID(ctx, rec.ID); !errors.Is(err, rationdomain.ErrWithdrawalNotFound) {
		t.Errorf("reversed record should be gone, got %v", err)
	}
	decs, _ := s.Decrements(ctx, rec.ID)
	if len(decs) != 0 {
		t.Errorf("reversed decrements should be gone, got %d", len(decs))
	}
}

func TestStore_ReverseUnknownWithdrawal(t *testing.T) {
	s := NewStore()
	if _, err := s.Reverse(context.Background(), uuid.New()); !errors.Is(err, rationdomain.ErrWithdrawalNotFound) {
		t.Fatalf("expected ErrWithdrawalNotFound, got %v", err)
	}
}

func TestStore_UpsertPlannedIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unitID, productID := uuid.New(), uuid.New()
	d := date(2026, 3, 2)

	recs := []*models.WithdrawalRecord{
		models.NewPlannedWithdrawal(unitID, productID, decimal.NewFromInt(4), d, 10, 2026),
	}

	created, err := s.UpsertPlanned(ctx, recs, false)
	if err != nil || created != 1 {
		t.Fatalf("first UpsertPlanned = (%d, %v), want (1, nil)", created, err)
	}

	// Same key again: skipped, not duplicated.
	again := []*models.WithdrawalRecord{
		models.NewPlannedWithdrawal(unitID, productID, decimal.NewFromInt(9), d, 10, 2026),
	}
	created, err = s.UpsertPlanned(ctx, again, false)
	if err != nil || created != 0 {
		t.Fatalf("second UpsertPlanned = (%d, %v), want (0, nil)", created, err)
	}

	listed, _ := s.ListForPeriod(ctx, 10, 2026, uuid.Nil, uuid.Nil)
	if len(listed) != 1 {
		t.Fatalf("expected 1 planned record, got %d", len(listed))
	}
	if !listed[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Errorf("quantity = %s, want the original 4 kept", listed[0].Quantity)
	}

	// With overwrite the quantity is replaced in place.
	if _, err := s.UpsertPlanned(ctx, again, true); err != nil {
		t.Fatalf("overwrite UpsertPlanned error = %v", err)
	}
	listed, _ = s.ListForPeriod(ctx, 10, 2026, uuid.Nil, uuid.Nil)
	if len(listed) != 1 || !listed[0].Quantity.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("after overwrite got %d records, quantity %s; want 1 record of 9", len(listed), listed[0].Quantity)
	}
}

func TestStore_ListForPeriodFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unitA, unitB := uuid.New(), uuid.New()
	productID := uuid.New()
	d := date(2026, 3, 2) // ISO week 10

	_, err := s.UpsertPlanned(ctx, []*models.WithdrawalRecord{
		models.NewPlannedWithdrawal(unitA, productID, decimal.NewFromInt(1), d, 10, 2026),
		models.NewPlannedWithdrawal(unitB, productID, decimal.NewFromInt(2), d, 10, 2026),
		models.NewPlannedWithdrawal(unitA, productID, decimal.NewFromInt(3), date(2026, 3, 9), 11, 2026),
	}, false)
	if err != nil {
		t.Fatalf("UpsertPlanned() error = %v", err)
	}

	week10, _ := s.ListForPeriod(ctx, 10, 2026, uuid.Nil, uuid.Nil)
	if len(week10) != 2 {
		t.Fatalf("week 10 records = %d, want 2", len(week10))
	}

	onlyA, _ := s.ListForPeriod(ctx, 10, 2026, unitA, uuid.Nil)
	if len(onlyA) != 1 || onlyA[0].UnitID != unitA {
		t.Fatalf("unit filter returned %+v, want one record for unit A", onlyA)
	}
}

func TestStore_AvailableQuantityExcludesExpired(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	productID := uuid.New()

	mustBatch(t, s, productID, "5", date(2026, 1, 1), date(2026, 1, 10))
	mustBatch(t, s, productID, "7", date(2026, 1, 5), date(2026, 3, 1))
	mustBatch(t, s, uuid.New(), "100", date(2026, 1, 1), date(2026, 3, 1)) // other product

	qty, err := s.AvailableQuantity(ctx, productID, date(2026, 1, 20))
	if err != nil {
		t.Fatalf("AvailableQuantity() error = %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("available = %s, want 7 (expired batch excluded)", qty)
	}
}
