package services

import (
	"github.com/ghuser/messhall/pkg/app"
	"github.com/ghuser/messhall/pkg/cache"
	"github.com/ghuser/messhall/services/ration/infrastructure/persistence/postgres"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Withdrawal   *WithdrawalService
	Reconciler   *Reconciler
	Availability *AvailabilityService
}

// New wires all ration application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	ledger := postgres.NewLedgerRepository(a.Db, a.EventBus)
	withdrawals := postgres.NewWithdrawalRepository(a.Db)
	catalog := postgres.NewCatalogRepository(a.Db)

	aggregator := domainsvcs.NewAggregator(catalog)
	availCache := cache.NewAvailabilityCache(a.Redis)

	return &Services{
		Withdrawal:   NewWithdrawalService(ledger, withdrawals, catalog, catalog, a.Logger),
		Reconciler:   NewReconciler(catalog, catalog, withdrawals, aggregator, a.Logger),
		Availability: NewAvailabilityService(ledger, catalog, availCache, a.Logger),
	}
}
