package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	pkgvalidator "github.com/ghuser/messhall/pkg/validator"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// CreateBatchRequest is the request body for registering a supply intake.
type CreateBatchRequest struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	EntryDate  string          `json:"entry_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
}

// CreateBatchResponse is returned on successful batch creation.
type CreateBatchResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Remaining  decimal.Decimal `json:"remaining"`
	Received   decimal.Decimal `json:"received"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	EntryDate  string          `json:"entry_date"`
	ExpiryDate string          `json:"expiry_date"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PostBatchHandler handles POST /batches requests.
type PostBatchHandler struct {
	svc *appsvcs.Services
}

// NewPostBatchHandler returns a PostBatchHandler backed by the given services.
func NewPostBatchHandler(svc *appsvcs.Services) *PostBatchHandler {
	return &PostBatchHandler{svc: svc}
}

// Execute registers an approved supply intake as a new inventory batch.
func (h *PostBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateBatchRequest](w, r)
	if !ok {
		return
	}

	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid entry_date"})
		return
	}
	expiryDate, err := parseDate(req.ExpiryDate)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid expiry_date"})
		return
	}

	batch, err := h.svc.Withdrawal.RecordIntake(r.Context(), req.ProductID, req.Quantity, req.UnitCost, entryDate, expiryDate)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, CreateBatchResponse{
		ID:         batch.ID,
		ProductID:  batch.ProductID,
		Remaining:  batch.Remaining,
		Received:   batch.Received,
		UnitCost:   batch.UnitCost,
		EntryDate:  batch.EntryDate.Format(dateLayout),
		ExpiryDate: batch.ExpiryDate.Format(dateLayout),
		CreatedAt:  batch.CreatedAt,
	})
}
