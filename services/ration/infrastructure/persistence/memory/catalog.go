package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
)

// Verify interface compliance.
var (
	_ repositories.ProductCatalog = (*Catalog)(nil)
	_ repositories.UnitRegistry   = (*Catalog)(nil)
	_ repositories.MenuProvider   = (*Catalog)(nil)
)

// Catalog is an in-memory product catalog, unit registry, and menu provider
// for tests and local development.
type Catalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]models.Product
	units    map[uuid.UUID]models.Unit
	menus    map[menuKey][]models.MenuDay
}

type menuKey struct {
	week int
	year int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[uuid.UUID]models.Product),
		units:    make(map[uuid.UUID]models.Unit),
		menus:    make(map[menuKey][]models.MenuDay),
	}
}

// AddProduct registers a product.
func (c *Catalog) AddProduct(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// AddUnit registers a receiving unit.
func (c *Catalog) AddUnit(u models.Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units[u.ID] = u
}

// SetWeekMenu stores the menu days for an ISO week.
func (c *Catalog) SetWeekMenu(week, year int, days []models.MenuDay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menus[menuKey{week: week, year: year}] = days
}

// GetProduct returns the product with the given id.
func (c *Catalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, rationdomain.ErrProductNotFound
	}
	return &p, nil
}

// FindProductByName resolves a name by case-insensitive substring match,
// preferring the first match in name order for determinism.
func (c *Catalog) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, rationdomain.ErrProductNotFound
	}

	var matches []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil, rationdomain.ErrProductNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return &matches[0], nil
}

// GetUnit returns the unit with the given id.
func (c *Catalog) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.units[id]
	if !ok {
		return nil, rationdomain.ErrUnitNotFound
	}
	return &u, nil
}

// ListUnits returns all units ordered by code ascending.
func (c *Catalog) ListUnits(ctx context.Context) ([]models.Unit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	units := make([]models.Unit, 0, len(c.units))
	for _, u := range c.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Code < units[j].Code })
	return units, nil
}

// WeekMenu returns the stored menu days for the given ISO week.
func (c *Catalog) WeekMenu(ctx context.Context, week, year int) ([]models.MenuDay, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MenuDay(nil), c.menus[menuKey{week: week, year: year}]...), nil
}
