package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
	"github.com/ghuser/messhall/services/ration/domain/models"
)

// GetWithdrawalsHandler handles GET /withdrawals requests.
type GetWithdrawalsHandler struct {
	svc *appsvcs.Services
}

// NewGetWithdrawalsHandler returns a GetWithdrawalsHandler backed by the given services.
func NewGetWithdrawalsHandler(svc *appsvcs.Services) *GetWithdrawalsHandler {
	return &GetWithdrawalsHandler{svc: svc}
}

// Execute lists a week's withdrawal records. Query parameters: week and year
// (required), type (optional: planned or actual).
func (h *GetWithdrawalsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 1 || week > 53 {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid week"})
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid year"})
		return
	}

	typ := models.WithdrawalType(r.URL.Query().Get("type"))
	switch typ {
	case "", models.WithdrawalPlanned, models.WithdrawalActual:
	default:
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid type"})
		return
	}

	recs, err := h.svc.Withdrawal.List(r.Context(), week, year, typ)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]WithdrawalResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toWithdrawalResponse(&recs[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}
