package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewInventoryBatch(t *testing.T) {
	t.Run("rounds quantity to two fractional digits", func(t *testing.T) {
		b, err := NewInventoryBatch(uuid.New(), decimal.RequireFromString("10.005"), decimal.Zero, date(2026, 1, 1), date(2026, 3, 1))
		if err != nil {
			t.Fatalf("NewInventoryBatch() error = %v", err)
		}
		if !b.Remaining.Equal(decimal.RequireFromString("10.01")) {
			t.Errorf("Remaining = %s, want 10.01", b.Remaining)
		}
		if !b.Received.Equal(b.Remaining) {
			t.Errorf("Received = %s, want equal to Remaining", b.Received)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		for _, qty := range []string{"0", "-1"} {
			_, err := NewInventoryBatch(uuid.New(), decimal.RequireFromString(qty), decimal.Zero, date(2026, 1, 1), date(2026, 3, 1))
			if !errors.Is(err, rationdomain.ErrInvalidQuantity) {
				t.Errorf("NewInventoryBatch(qty=%s) error = %v, want ErrInvalidQuantity", qty, err)
			}
		}
	})
}

func TestInventoryBatch_Usable(t *testing.T) {
	b, _ := NewInventoryBatch(uuid.New(), decimal.NewFromInt(5), decimal.Zero, date(2026, 1, 1), date(2026, 2, 1))

	if !b.Usable(date(2026, 1, 15)) {
		t.Error("batch with stock before expiry should be usable")
	}
	if !b.Usable(date(2026, 2, 1)) {
		t.Error("batch should still be usable on its expiry date")
	}
	if b.Usable(date(2026, 2, 2)) {
		t.Error("batch expired before asOf should not be usable")
	}

	b.Remaining = decimal.Zero
	if b.Usable(date(2026, 1, 15)) {
		t.Error("empty batch should not be usable")
	}
}

func TestInventoryBatch_Take(t *testing.T) {
	b, _ := NewInventoryBatch(uuid.New(), decimal.NewFromInt(5), decimal.Zero, date(2026, 1, 1), date(2026, 2, 1))

	took := b.Take(decimal.NewFromInt(3))
	if !took.Equal(decimal.NewFromInt(3)) || !b.Remaining.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("Take(3) = %s, remaining %s; want 3 taken, 2 remaining", took, b.Remaining)
	}

	// Asking for more than remains drains the batch and nothing else.
	took = b.Take(decimal.NewFromInt(10))
	if !took.Equal(decimal.NewFromInt(2)) || !b.Remaining.IsZero() {
		t.Fatalf("Take(10) = %s, remaining %s; want 2 taken, 0 remaining", took, b.Remaining)
	}
}

func TestInventoryBatch_Restore(t *testing.T) {
	b, _ := NewInventoryBatch(uuid.New(), decimal.NewFromInt(5), decimal.Zero, date(2026, 1, 1), date(2026, 2, 1))
	b.Take(decimal.NewFromInt(4))

	if err := b.Restore(decimal.NewFromInt(4)); err != nil {
		t.Fatalf("Restore(4) error = %v", err)
	}
	if !b.Remaining.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("Remaining = %s, want 5", b.Remaining)
	}

	// Restoring past the received quantity must be refused.
	if err := b.Restore(decimal.NewFromInt(1)); !errors.Is(err, rationdomain.ErrBatchOverfill) {
		t.Fatalf("Restore past Received error = %v, want ErrBatchOverfill", err)
	}
	if !b.Remaining.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("failed Restore must not change Remaining, got %s", b.Remaining)
	}
}

func TestInventoryBatch_Value(t *testing.T) {
	b, _ := NewInventoryBatch(uuid.New(), decimal.NewFromInt(4), decimal.RequireFromString("2.50"), date(2026, 1, 1), date(2026, 2, 1))
	if !b.Value().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("Value() = %s, want 10", b.Value())
	}
}
