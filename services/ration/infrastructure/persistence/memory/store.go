// Package memory provides mutex-guarded in-memory implementations of the
// ration repositories. Used by tests and by local development without
// Postgres; the single lock gives the same serializable behavior per store
// that the Postgres repositories get from row locks.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Store holds batches, withdrawal records, and decrement audit rows behind
// one mutex.
type Store struct {
	mu          sync.Mutex
	batches     map[uuid.UUID]*models.InventoryBatch
	withdrawals map[uuid.UUID]*models.WithdrawalRecord
	decrements  map[uuid.UUID][]models.BatchDecrement
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		batches:     make(map[uuid.UUID]*models.InventoryBatch),
		withdrawals: make(map[uuid.UUID]*models.WithdrawalRecord),
		decrements:  make(map[uuid.UUID][]models.BatchDecrement),
	}
}

// Verify interface compliance.
var (
	_ repositories.LedgerRepository     = (*Store)(nil)
	_ repositories.WithdrawalRepository = (*Store)(nil)
)

// CreateBatch records a new received lot.
func (s *Store) CreateBatch(ctx context.Context, batch *models.InventoryBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := *batch
	s.batches[b.ID] = &b
	return nil
}

// GetBatch returns a copy of one batch.
func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (*models.InventoryBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, rationdomain.ErrBatchNotFound
	}
	copied := *b
	return &copied, nil
}

// ListBatches returns the product's batches in FIFO depletion order.
func (s *Store) ListBatches(ctx context.Context, productID uuid.UUID) ([]models.InventoryBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchesForProduct(productID), nil
}

func (s *Store) batchesForProduct(productID uuid.UUID) []models.InventoryBatch {
	var out []models.InventoryBatch
	for _, b := range s.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out
}

// AvailableQuantity sums non-expired batch remainders for the product.
func (s *Store) AvailableQuantity(ctx context.Context, productID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, b := range s.batches {
		if b.ProductID == productID && b.Usable(asOf) {
			total = total.Add(b.Remaining)
		}
	}
	return total, nil
}

// Withdraw plans a FIFO depletion against the current batch state and applies
// it together with the withdrawal record under the store lock, so concurrent
// withdrawals never act on the same snapshot.
func (s *Store) Withdraw(ctx context.Context, rec *models.WithdrawalRecord) ([]models.BatchDecrement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decs, err := domainsvcs.PlanDepletion(s.batchesForProduct(rec.ProductID), rec.Quantity, rec.Date)
	if err != nil {
		return nil, err
	}

	for i := range decs {
		decs[i].WithdrawalID = rec.ID
		s.batches[decs[i].BatchID].Take(decs[i].Quantity)
	}

	copied := *rec
	s.withdrawals[rec.ID] = &copied
	s.decrements[rec.ID] = decs
	return decs, nil
}

// Reverse restores the withdrawal's decrements into their source batches and
// deletes the record.
func (s *Store) Reverse(ctx context.Context, withdrawalID uuid.UUID) (*models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.withdrawals[withdrawalID]
	if !ok || rec.Type != models.WithdrawalActual {
		return nil, rationdomain.ErrWithdrawalNotFound
	}

	for _, dec := range s.decrements[withdrawalID] {
		batch, ok := s.batches[dec.BatchID]
		if !ok {
			return nil, rationdomain.ErrBatchNotFound
		}
		if err := batch.Restore(dec.Quantity); err != nil {
			return nil, err
		}
	}

	delete(s.withdrawals, withdrawalID)
	delete(s.decrements, withdrawalID)
	return rec, nil
}

// Decrements returns the audit rows recorded by a withdrawal.
func (s *Store) Decrements(ctx context.Context, withdrawalID uuid.UUID) ([]models.BatchDecrement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BatchDecrement(nil), s.decrements[withdrawalID]...), nil
}

// GetByID returns one withdrawal record.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.withdrawals[id]
	if !ok {
		return nil, rationdomain.ErrWithdrawalNotFound
	}
	copied := *rec
	return &copied, nil
}

// UpsertPlanned persists planned records keyed by (date, unit, product).
func (s *Store) UpsertPlanned(ctx context.Context, recs []*models.WithdrawalRecord, overwrite bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, rec := range recs {
		existingID, exists := s.plannedKeyIndex(rec)
		switch {
		case exists && !overwrite:
			continue
		case exists && overwrite:
			delete(s.withdrawals, existingID)
		}
		copied := *rec
		s.withdrawals[rec.ID] = &copied
		if !exists {
			created++
		}
	}
	return created, nil
}

func (s *Store) plannedKeyIndex(rec *models.WithdrawalRecord) (uuid.UUID, bool) {
	for id, existing := range s.withdrawals {
		if existing.Type == models.WithdrawalPlanned &&
			existing.UnitID == rec.UnitID &&
			existing.ProductID == rec.ProductID &&
			sameDay(existing.Date, rec.Date) {
			return id, true
		}
	}
	return uuid.Nil, false
}

// ListForPeriod returns all records dated within the given ISO week.
func (s *Store) ListForPeriod(ctx context.Context, week, year int, unitID, productID uuid.UUID) ([]models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.WithdrawalRecord
	for _, rec := range s.withdrawals {
		y, w := rec.Date.ISOWeek()
		if y != year || w != week {
			continue
		}
		if unitID != uuid.Nil && rec.UnitID != unitID {
			continue
		}
		if productID != uuid.Nil && rec.ProductID != productID {
			continue
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
