package handlers

import (
	"net/http"

	"github.com/ghuser/messhall/pkg/errhttp"
	"github.com/ghuser/messhall/pkg/httpx"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// GeneratePlanResponse reports the outcome of a planned-generation run.
type GeneratePlanResponse struct {
	Week     int      `json:"week"`
	Year     int      `json:"year"`
	Created  int      `json:"created"`
	Warnings []string `json:"warnings"`
}

// PostPlanHandler handles POST /plans/{year}/{week} requests.
type PostPlanHandler struct {
	svc *appsvcs.Services
}

// NewPostPlanHandler returns a PostPlanHandler backed by the given services.
func NewPostPlanHandler(svc *appsvcs.Services) *PostPlanHandler {
	return &PostPlanHandler{svc: svc}
}

// Execute generates planned withdrawals for one ISO week from the menu.
// Re-running is idempotent unless overwrite=true is passed, which replaces
// existing planned quantities in place.
func (h *PostPlanHandler) Execute(w http.ResponseWriter, r *http.Request) {
	week, year, ok := weekYearParams(r)
	if !ok {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid week or year"})
		return
	}
	overwrite := r.URL.Query().Get("overwrite") == "true"

	created, warnings, err := h.svc.Reconciler.GeneratePlanned(r.Context(), week, year, overwrite)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if warnings == nil {
		warnings = []string{}
	}
	httpx.JSON(w, http.StatusOK, GeneratePlanResponse{
		Week:     week,
		Year:     year,
		Created:  created,
		Warnings: warnings,
	})
}
