package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// VarianceRowResponse is one planned-vs-actual comparison row.
type VarianceRowResponse struct {
	Date            string           `json:"date"`
	UnitID          uuid.UUID        `json:"unit_id"`
	ProductID       uuid.UUID        `json:"product_id"`
	Planned         decimal.Decimal  `json:"planned"`
	Actual          decimal.Decimal  `json:"actual"`
	Variance        decimal.Decimal  `json:"variance"`
	VariancePercent *decimal.Decimal `json:"variance_percent"`
}

// GetVarianceHandler handles GET /plans/{year}/{week}/variance requests.
type GetVarianceHandler struct {
	svc *appsvcs.Services
}

// NewGetVarianceHandler returns a GetVarianceHandler backed by the given services.
func NewGetVarianceHandler(svc *appsvcs.Services) *GetVarianceHandler {
	return &GetVarianceHandler{svc: svc}
}

// Execute compares a week's planned withdrawals against actual issues.
// Optional query parameters unit_id and product_id narrow the comparison.
// variance_percent is null for rows with nothing planned.
func (h *GetVarianceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	week, year, ok := weekYearParams(r)
	if !ok {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid week or year"})
		return
	}

	unitID, ok := optionalUUID(r, "unit_id")
	if !ok {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid unit_id"})
		return
	}
	productID, ok := optionalUUID(r, "product_id")
	if !ok {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
		return
	}

	rows, err := h.svc.Reconciler.Compare(r.Context(), week, year, unitID, productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]VarianceRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, VarianceRowResponse{
			Date:            row.Date.Format(dateLayout),
			UnitID:          row.UnitID,
			ProductID:       row.ProductID,
			Planned:         row.Planned,
			Actual:          row.Actual,
			Variance:        row.Variance,
			VariancePercent: row.VariancePercent,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// optionalUUID parses an optional UUID query parameter. Absent values return
// uuid.Nil with ok=true.
func optionalUUID(r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
