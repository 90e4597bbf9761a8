package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
)

// Aggregator sums per-dish ingredient needs into per-product daily
// requirements. It only reads the product catalog; it never touches the
// ledger.
type Aggregator struct {
	catalog repositories.ProductCatalog
}

// NewAggregator returns an Aggregator resolving ingredients against the given catalog.
func NewAggregator(catalog repositories.ProductCatalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// Aggregate produces one IngredientRequirement per distinct product used by
// the day's menu, with quantity = Σ(per-person quantity × meal headcount)
// across every meal and dish. A zero headcount still yields a zero-quantity
// requirement so downstream reconciliation can show "0 planned, 0 needed".
//
// Ingredients that cannot be resolved to a catalog product are skipped and
// reported in the returned warnings, never failed on. A structurally broken
// day returns an InvalidMenuDataError instead.
func (a *Aggregator) Aggregate(ctx context.Context, day models.MenuDay) ([]models.IngredientRequirement, []string, error) {
	if day.Date.IsZero() {
		return nil, nil, &rationdomain.InvalidMenuDataError{Day: "unknown", Reason: "day has no date"}
	}
	dayKey := day.Date.Format("2006-01-02")

	byProduct := make(map[uuid.UUID]*models.IngredientRequirement)
	var order []uuid.UUID
	var warnings []string

	for _, meal := range day.Meals {
		if meal.Headcount < 0 {
			return nil, nil, &rationdomain.InvalidMenuDataError{
				Day:    dayKey,
				Reason: fmt.Sprintf("meal %q has negative headcount %d", meal.Name, meal.Headcount),
			}
		}
		headcount := decimal.NewFromInt(int64(meal.Headcount))

		for _, dish := range meal.Dishes {
			if dish.Name == "" {
				return nil, nil, &rationdomain.InvalidMenuDataError{Day: dayKey, Reason: "dish without a name"}
			}
			for _, ing := range dish.Ingredients {
				if ing.PerPerson.IsNegative() {
					return nil, nil, &rationdomain.InvalidMenuDataError{
						Day:    dayKey,
						Dish:   dish.Name,
						Reason: fmt.Sprintf("ingredient %q has negative per-person quantity", ing.Name),
					}
				}

				product, err := a.resolve(ctx, ing)
				if err != nil {
					if errors.Is(err, rationdomain.ErrProductNotFound) {
						warnings = append(warnings, fmt.Sprintf(
							"ingredient %q in dish %q on %s does not match any catalog product; skipped",
							ing.Name, dish.Name, dayKey))
						continue
					}
					return nil, nil, fmt.Errorf("resolve ingredient %q: %w", ing.Name, err)
				}

				req, ok := byProduct[product.ID]
				if !ok {
					req = &models.IngredientRequirement{
						Date:        day.Date,
						ProductID:   product.ID,
						ProductName: product.Name,
						Unit:        product.Unit,
						CategoryID:  product.CategoryID,
						Quantity:    decimal.Zero,
					}
					byProduct[product.ID] = req
					order = append(order, product.ID)
				}
				req.Quantity = req.Quantity.Add(ing.PerPerson.Mul(headcount))
				req.Dishes = appendDish(req.Dishes, dish.Name)
			}
		}
	}

	reqs := make([]models.IngredientRequirement, 0, len(order))
	for _, id := range order {
		reqs = append(reqs, *byProduct[id])
	}
	return reqs, warnings, nil
}

// resolve matches an ingredient to a catalog product: exact id when present,
// case-insensitive name match otherwise.
func (a *Aggregator) resolve(ctx context.Context, ing models.Ingredient) (*models.Product, error) {
	if ing.ProductID != uuid.Nil {
		return a.catalog.GetProduct(ctx, ing.ProductID)
	}
	if ing.Name == "" {
		return nil, rationdomain.ErrProductNotFound
	}
	return a.catalog.FindProductByName(ctx, ing.Name)
}

func appendDish(dishes []string, name string) []string {
	for _, d := range dishes {
		if d == name {
			return dishes
		}
	}
	return append(dishes, name)
}
