package handlers

import (
	"net/http"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	pkgvalidator "github.com/ghuser/messhall/pkg/validator"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// PostWithdrawalHandler handles POST /withdrawals requests.
type PostWithdrawalHandler struct {
	svc *appsvcs.Services
}

// NewPostWithdrawalHandler returns a PostWithdrawalHandler backed by the given services.
func NewPostWithdrawalHandler(svc *appsvcs.Services) *PostWithdrawalHandler {
	return &PostWithdrawalHandler{svc: svc}
}

// Execute records an actual withdrawal, depleting inventory batches
// first-expiring-first-out.
func (h *PostWithdrawalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[WithdrawalRequest](w, r)
	if !ok {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		return
	}

	rec, err := h.svc.Withdrawal.CreateActual(r.Context(), req.UnitID, req.ProductID, req.Quantity, date, req.Receiver)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toWithdrawalResponse(rec))
}
