package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/messhall/services/ration/domain/models"
)

// ProductCatalog is the read-only view of the product CRUD collaborator.
type ProductCatalog interface {
	// GetProduct returns the product with the given id, or ErrProductNotFound.
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// FindProductByName resolves a free-text ingredient name to a product by
	// case-insensitive substring match. Returns ErrProductNotFound when no
	// product matches; an ambiguous match resolves to the first product in
	// name order.
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
}

// UnitRegistry is the read-only view of the unit CRUD collaborator.
type UnitRegistry interface {
	// GetUnit returns the unit with the given id, or ErrUnitNotFound.
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)

	// ListUnits returns all receiving units ordered by unit code ascending.
	// The ordering is the allocation tie-break order.
	ListUnits(ctx context.Context) ([]models.Unit, error)
}

// MenuProvider is the read-only view of the weekly menu collaborator.
type MenuProvider interface {
	// WeekMenu returns one MenuDay per scheduled day of the given ISO week.
	// Days without a menu are simply absent.
	WeekMenu(ctx context.Context, week, year int) ([]models.MenuDay, error)
}
