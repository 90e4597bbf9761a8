package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

// dateLayout is the wire format for calendar dates; withdrawals carry no
// time-of-day component.
const dateLayout = "2006-01-02"

// WithdrawalRequest is the request body for creating or editing an actual
// withdrawal.
type WithdrawalRequest struct {
	UnitID    uuid.UUID       `json:"unit_id" validate:"required"`
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Receiver  string          `json:"receiver" validate:"max=255"`
}

// WithdrawalResponse mirrors one withdrawal record on the wire.
type WithdrawalResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	UnitID    uuid.UUID       `json:"unit_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      string          `json:"date"`
	Receiver  string          `json:"receiver,omitempty"`
	PlanWeek  int             `json:"plan_week,omitempty"`
	PlanYear  int             `json:"plan_year,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toWithdrawalResponse(rec *models.WithdrawalRecord) WithdrawalResponse {
	return WithdrawalResponse{
		ID:        rec.ID,
		Type:      string(rec.Type),
		UnitID:    rec.UnitID,
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		Date:      rec.Date.Format(dateLayout),
		Receiver:  rec.Receiver,
		PlanWeek:  rec.PlanWeek,
		PlanYear:  rec.PlanYear,
		CreatedAt: rec.CreatedAt,
	}
}

// parseDate parses a request date; validation guarantees the layout already,
// so errors here only guard direct callers.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// weekYearParams reads the {year}/{week} path segments shared by the plan
// and variance endpoints.
func weekYearParams(r *http.Request) (week, year int, ok bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, false
	}
	week, err = strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	return week, year, true
}
