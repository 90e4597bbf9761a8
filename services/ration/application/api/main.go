package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/messhall/pkg/app"
	"github.com/ghuser/messhall/services/ration/application/handlers"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

// RationRoutes registers ration endpoints on the provided chi router.
func RationRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", handlers.NewPostWithdrawalHandler(svcs).Execute)
			r.Get("/", handlers.NewGetWithdrawalsHandler(svcs).Execute)
			r.Put("/{id}", handlers.NewPutWithdrawalHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteWithdrawalHandler(svcs).Execute)
		})
		r.Route("/plans/{year}/{week}", func(r chi.Router) {
			r.Post("/", handlers.NewPostPlanHandler(svcs).Execute)
			r.Get("/variance", handlers.NewGetVarianceHandler(svcs).Execute)
		})
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", handlers.NewPostBatchHandler(svcs).Execute)
		})
		r.Get("/products/{id}/availability", handlers.NewGetAvailabilityHandler(svcs).Execute)
	})
}
