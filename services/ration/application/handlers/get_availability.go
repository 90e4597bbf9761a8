package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// AvailabilityResponse reports how much of a product is issuable on a date.
type AvailabilityResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	AsOf      string          `json:"as_of"`
	Available decimal.Decimal `json:"available"`
}

// GetAvailabilityHandler handles GET /products/{id}/availability requests.
type GetAvailabilityHandler struct {
	svc *appsvcs.Services
}

// NewGetAvailabilityHandler returns a GetAvailabilityHandler backed by the given services.
func NewGetAvailabilityHandler(svc *appsvcs.Services) *GetAvailabilityHandler {
	return &GetAvailabilityHandler{svc: svc}
}

// Execute returns the non-expired quantity of a product as of a date.
// The optional as_of query parameter defaults to today.
func (h *GetAvailabilityHandler) Execute(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
		return
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = parseDate(raw)
		if err != nil {
			httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid as_of date"})
			return
		}
	}

	qty, err := h.svc.Availability.Available(r.Context(), productID, asOf)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, AvailabilityResponse{
		ProductID: productID,
		AsOf:      asOf.Format(dateLayout),
		Available: qty,
	})
}
