package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/config"
	"github.com/ghuser/messhall/pkg/logger"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/infrastructure/persistence/memory"
)

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store   *memory.Store
	catalog *memory.Catalog
	svc     *WithdrawalService

	unit    models.Unit
	product models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	catalog := memory.NewCatalog()

	unit := models.Unit{ID: uuid.New(), Code: "A", Name: "first company", Personnel: 100}
	product := models.Product{ID: uuid.New(), Name: "Rice", Unit: "kg"}
	catalog.AddUnit(unit)
	catalog.AddProduct(product)

	return &fixture{
		store:   store,
		catalog: catalog,
		svc:     NewWithdrawalService(store, store, catalog, catalog, testLogger()),
		unit:    unit,
		product: product,
	}
}

func (f *fixture) addBatch(t *testing.T, qty string, entry, expiry time.Time) *models.InventoryBatch {
	t.Helper()
	b, err := models.NewInventoryBatch(f.product.ID, decimal.RequireFromString(qty), decimal.Zero, entry, expiry)
	if err != nil {
		t.Fatalf("NewInventoryBatch() error = %v", err)
	}
	if err := f.store.CreateBatch(context.Background(), b); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	return b
}

func TestWithdrawalService_CreateActual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	rec, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(4), date(2026, 3, 2), "duty officer")
	if err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}

	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(6)) {
		t.Errorf("available after withdrawal = %s, want 6", avail)
	}
	stored, err := f.store.GetByID(ctx, rec.ID)
	if err != nil || stored.Type != models.WithdrawalActual {
		t.Fatalf("stored record = %+v, err = %v", stored, err)
	}
}

func TestWithdrawalService_CreateActualValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	tests := []struct {
		name      string
		unitID    uuid.UUID
		productID uuid.UUID
		qty       decimal.Decimal
		wantErr   error
	}{
		{"zero quantity", f.unit.ID, f.product.ID, decimal.Zero, rationdomain.ErrInvalidQuantity},
		{"unknown unit", uuid.New(), f.product.ID, decimal.NewFromInt(1), rationdomain.ErrUnitNotFound},
		{"unknown product", f.unit.ID, uuid.New(), decimal.NewFromInt(1), rationdomain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateActual(ctx, tt.unitID, tt.productID, tt.qty, date(2026, 3, 2), "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateActual() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing was withdrawn by the failed attempts.
	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(10)) {
		t.Errorf("available = %s, want untouched 10", avail)
	}
}

func TestWithdrawalService_UpdateActual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	rec, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(4), date(2026, 3, 2), "")
	if err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}

	updated, err := f.svc.UpdateActual(ctx, rec.ID, f.unit.ID, f.product.ID, decimal.NewFromInt(7), date(2026, 3, 2), "")
	if err != nil {
		t.Fatalf("UpdateActual() error = %v", err)
	}
	if updated.ID != rec.ID {
		t.Fatalf("edit must keep the record id, got %s", updated.ID)
	}

	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(3)) {
		t.Errorf("available after edit = %s, want 3 (10 − 7)", avail)
	}
}

func TestWithdrawalService_UpdateActualInsufficientLeavesReversal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	rec, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(4), date(2026, 3, 2), "")
	if err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}

	// New quantity exceeds total stock: the fresh withdrawal fails after the
	// old one was already reversed.
	_, err = f.svc.UpdateActual(ctx, rec.ID, f.unit.ID, f.product.ID, decimal.NewFromInt(50), date(2026, 3, 2), "")
	if !errors.Is(err, rationdomain.ErrInsufficientInventory) {
		t.Fatalf("UpdateActual() error = %v, want ErrInsufficientInventory", err)
	}

	// The ledger ends as if only the reversal happened.
	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(10)) {
		t.Errorf("available = %s, want 10 (old issue reversed)", avail)
	}
	if _, err := f.store.GetByID(ctx, rec.ID); !errors.Is(err, rationdomain.ErrWithdrawalNotFound) {
		t.Errorf("old record should be gone, got %v", err)
	}
}

func TestWithdrawalService_UpdateActualInvalidRefsChangeNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	rec, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(4), date(2026, 3, 2), "")
	if err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}

	// References are validated before any reversal.
	_, err = f.svc.UpdateActual(ctx, rec.ID, uuid.New(), f.product.ID, decimal.NewFromInt(2), date(2026, 3, 2), "")
	if !errors.Is(err, rationdomain.ErrUnitNotFound) {
		t.Fatalf("UpdateActual() error = %v, want ErrUnitNotFound", err)
	}

	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(6)) {
		t.Errorf("available = %s, want 6 (original withdrawal intact)", avail)
	}
	if _, err := f.store.GetByID(ctx, rec.ID); err != nil {
		t.Errorf("original record must survive, got %v", err)
	}
}

func TestWithdrawalService_DeleteActual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	rec, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(4), date(2026, 3, 2), "")
	if err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}

	if err := f.svc.DeleteActual(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteActual() error = %v", err)
	}

	avail, _ := f.store.AvailableQuantity(ctx, f.product.ID, date(2026, 3, 2))
	if !avail.Equal(decimal.NewFromInt(10)) {
		t.Errorf("available after delete = %s, want 10", avail)
	}
}

func TestWithdrawalService_ListFiltersByType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBatch(t, "10", date(2026, 3, 1), date(2026, 5, 1))

	d := date(2026, 3, 2) // ISO week 10
	if _, err := f.svc.CreateActual(ctx, f.unit.ID, f.product.ID, decimal.NewFromInt(2), d, ""); err != nil {
		t.Fatalf("CreateActual() error = %v", err)
	}
	if _, err := f.store.UpsertPlanned(ctx, []*models.WithdrawalRecord{
		models.NewPlannedWithdrawal(f.unit.ID, f.product.ID, decimal.NewFromInt(5), d, 10, 2026),
	}, false); err != nil {
		t.Fatalf("UpsertPlanned() error = %v", err)
	}

	all, err := f.svc.List(ctx, 10, 2026, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List(all) = %d records, err %v; want 2", len(all), err)
	}
	planned, err := f.svc.List(ctx, 10, 2026, models.WithdrawalPlanned)
	if err != nil || len(planned) != 1 || planned[0].Type != models.WithdrawalPlanned {
		t.Fatalf("List(planned) = %+v, err %v", planned, err)
	}
}

func TestWithdrawalService_RecordIntake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	batch, err := f.svc.RecordIntake(ctx, f.product.ID, decimal.NewFromInt(25), decimal.RequireFromString("1.80"), date(2026, 3, 1), date(2026, 6, 1))
	if err != nil {
		t.Fatalf("RecordIntake() error = %v", err)
	}
	if !batch.Remaining.Equal(decimal.NewFromInt(25)) {
		t.Errorf("batch remaining = %s, want 25", batch.Remaining)
	}

	if _, err := f.svc.RecordIntake(ctx, uuid.New(), decimal.NewFromInt(1), decimal.Zero, date(2026, 3, 1), date(2026, 6, 1)); !errors.Is(err, rationdomain.ErrProductNotFound) {
		t.Fatalf("RecordIntake(unknown product) error = %v, want ErrProductNotFound", err)
	}
}
