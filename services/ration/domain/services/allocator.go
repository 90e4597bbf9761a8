package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

// allocationScale is the number of fractional digits each unit's share is
// rounded to before the residual is assigned.
const allocationScale = 2

// Allocate distributes a daily requirement across receiving units in
// proportion to their headcount on the given date. Units must be supplied in
// a stable order (unit code ascending); ties for the residual go to the
// first unit in that order.
//
// Each share is R × hᵢ / H rounded to two fractional digits; the rounding
// residual is added to the largest-headcount unit so that the shares sum to
// R exactly. A total headcount of zero allocates zero to every unit.
func Allocate(requirement decimal.Decimal, units []models.Unit, date time.Time) map[uuid.UUID]decimal.Decimal {
	shares := make(map[uuid.UUID]decimal.Decimal, len(units))
	if len(units) == 0 {
		return shares
	}

	headcounts := make([]int, len(units))
	total := 0
	for i := range units {
		headcounts[i] = units[i].PersonnelOn(date)
		total += headcounts[i]
	}

	if total == 0 {
		for i := range units {
			shares[units[i].ID] = decimal.Zero
		}
		return shares
	}

	totalDec := decimal.NewFromInt(int64(total))
	allocated := decimal.Zero
	largest := 0
	for i := range units {
		share := requirement.
			Mul(decimal.NewFromInt(int64(headcounts[i]))).
			Div(totalDec).
			Round(allocationScale)
		shares[units[i].ID] = share
		allocated = allocated.Add(share)
		if headcounts[i] > headcounts[largest] {
			largest = i
		}
	}

	// Conservation: the residual is never dropped; the largest unit absorbs it.
	residual := requirement.Sub(allocated)
	if !residual.IsZero() {
		id := units[largest].ID
		shares[id] = shares[id].Add(residual)
	}
	return shares
}
