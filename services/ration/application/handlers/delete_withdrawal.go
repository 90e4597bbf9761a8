package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// DeleteWithdrawalHandler handles DELETE /withdrawals/{id} requests.
type DeleteWithdrawalHandler struct {
	svc *appsvcs.Services
}

// NewDeleteWithdrawalHandler returns a DeleteWithdrawalHandler backed by the given services.
func NewDeleteWithdrawalHandler(svc *appsvcs.Services) *DeleteWithdrawalHandler {
	return &DeleteWithdrawalHandler{svc: svc}
}

// Execute reverses an actual withdrawal, restoring every batch it depleted.
func (h *DeleteWithdrawalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid withdrawal id"})
		return
	}

	if err := h.svc.Withdrawal.DeleteActual(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
