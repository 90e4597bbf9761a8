package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

func testUnit(code string, personnel int) models.Unit {
	return models.Unit{ID: uuid.New(), Code: code, Name: "unit " + code, Personnel: personnel}
}

func TestAllocate_ProportionalShares(t *testing.T) {
	a := testUnit("A", 180)
	b := testUnit("B", 120)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	shares := Allocate(decimal.NewFromInt(12), []models.Unit{a, b}, date)

	if got := shares[a.ID]; !got.Equal(decimal.RequireFromString("7.2")) {
		t.Errorf("unit A share = %s, want 7.2", got)
	}
	if got := shares[b.ID]; !got.Equal(decimal.RequireFromString("4.8")) {
		t.Errorf("unit B share = %s, want 4.8", got)
	}
}

func TestAllocate_SharesSumToRequirement(t *testing.T) {
	tests := []struct {
		name        string
		requirement string
		personnel   []int
	}{
		{"thirds leave a residual", "10", []int{1, 1, 1}},
		{"sevenths", "100", []int{3, 2, 2}},
		{"fractional requirement", "0.05", []int{7, 11, 13}},
		{"single unit", "42.42", []int{250}},
	}

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := make([]models.Unit, len(tt.personnel))
			for i, p := range tt.personnel {
				units[i] = testUnit(string(rune('A'+i)), p)
			}
			requirement := decimal.RequireFromString(tt.requirement)

			shares := Allocate(requirement, units, date)

			total := decimal.Zero
			for _, share := range shares {
				total = total.Add(share)
			}
			if !total.Equal(requirement) {
				t.Errorf("shares sum to %s, want %s", total, requirement)
			}
		})
	}
}

func TestAllocate_ResidualGoesToLargestUnit(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// 0.10 over [1, 1, 2]: rounded shares 0.03 + 0.03 + 0.05 = 0.11, so the
	// largest unit absorbs the -0.01 residual.
	a, b, c := testUnit("A", 1), testUnit("B", 1), testUnit("C", 2)
	shares := Allocate(decimal.RequireFromString("0.10"), []models.Unit{a, b, c}, date)

	if got := shares[c.ID]; !got.Equal(decimal.RequireFromString("0.04")) {
		t.Errorf("largest unit share = %s, want 0.04", got)
	}
}

func TestAllocate_ResidualTieBreaksToFirstUnit(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// 10 over [1, 1, 1]: each share rounds to 3.33, leaving 0.01 that must
	// land on the first of the equally-largest units.
	a, b, c := testUnit("A", 1), testUnit("B", 1), testUnit("C", 1)
	shares := Allocate(decimal.NewFromInt(10), []models.Unit{a, b, c}, date)

	if got := shares[a.ID]; !got.Equal(decimal.RequireFromString("3.34")) {
		t.Errorf("first unit share = %s, want 3.34", got)
	}
	for _, u := range []models.Unit{b, c} {
		if got := shares[u.ID]; !got.Equal(decimal.RequireFromString("3.33")) {
			t.Errorf("unit %s share = %s, want 3.33", u.Code, got)
		}
	}
}

func TestAllocate_ZeroTotalHeadcount(t *testing.T) {
	a := testUnit("A", 0)
	b := testUnit("B", 0)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	shares := Allocate(decimal.NewFromInt(50), []models.Unit{a, b}, date)

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	for id, share := range shares {
		if !share.IsZero() {
			t.Errorf("unit %s share = %s, want 0", id, share)
		}
	}
}

func TestAllocate_UsesPerDateOverride(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a := testUnit("A", 100)
	a.PersonnelByDate = map[string]int{"2026-03-02": 0}
	b := testUnit("B", 100)

	shares := Allocate(decimal.NewFromInt(10), []models.Unit{a, b}, date)

	if !shares[a.ID].IsZero() {
		t.Errorf("unit A share = %s, want 0 (override headcount is 0)", shares[a.ID])
	}
	if !shares[b.ID].Equal(decimal.NewFromInt(10)) {
		t.Errorf("unit B share = %s, want 10", shares[b.ID])
	}
}

func TestAllocate_NoUnits(t *testing.T) {
	shares := Allocate(decimal.NewFromInt(10), nil, time.Now())
	if len(shares) != 0 {
		t.Fatalf("expected empty shares, got %d entries", len(shares))
	}
}
