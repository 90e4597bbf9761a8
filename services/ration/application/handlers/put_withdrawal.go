package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	pkgvalidator "github.com/ghuser/messhall/pkg/validator"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// PutWithdrawalHandler handles PUT /withdrawals/{id} requests.
type PutWithdrawalHandler struct {
	svc *appsvcs.Services
}

// NewPutWithdrawalHandler returns a PutWithdrawalHandler backed by the given services.
func NewPutWithdrawalHandler(svc *appsvcs.Services) *PutWithdrawalHandler {
	return &PutWithdrawalHandler{svc: svc}
}

// Execute edits an actual withdrawal: the original issue is reversed in full
// and a fresh withdrawal is performed with the new parameters.
func (h *PutWithdrawalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid withdrawal id"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[WithdrawalRequest](w, r)
	if !ok {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		return
	}

	rec, err := h.svc.Withdrawal.UpdateActual(r.Context(), id, req.UnitID, req.ProductID, req.Quantity, date, req.Receiver)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toWithdrawalResponse(rec))
}
