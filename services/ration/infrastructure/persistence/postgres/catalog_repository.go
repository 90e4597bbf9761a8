package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/messhall/pkg/database"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
	"github.com/ghuser/messhall/services/ration/domain/models"
	"github.com/ghuser/messhall/services/ration/domain/repositories"
	domainsvcs "github.com/ghuser/messhall/services/ration/domain/services"
)

// Verify interface compliance.
var (
	_ repositories.ProductCatalog = (*CatalogRepository)(nil)
	_ repositories.UnitRegistry   = (*CatalogRepository)(nil)
	_ repositories.MenuProvider   = (*CatalogRepository)(nil)
)

// CatalogRepository reads the product catalog, unit registry, and menu
// tables owned by the surrounding CRUD collaborators. Everything here is
// read-only.
type CatalogRepository struct {
	db *database.Database
}

// NewCatalogRepository returns a CatalogRepository backed by the given pool.
func NewCatalogRepository(db *database.Database) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProduct returns the product with the given id.
func (r *CatalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT id, name, unit, category_id FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Unit, &p.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rationdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

// FindProductByName resolves a free-text ingredient name by case-insensitive
// substring match, preferring the first product in name order.
func (r *CatalogRepository) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT id, name, unit, category_id FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT 1`, name,
	).Scan(&p.ID, &p.Name, &p.Unit, &p.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rationdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return &p, nil
}

// GetUnit returns the unit with the given id, including its per-day
// headcount overrides.
func (r *CatalogRepository) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, code, name, personnel, personnel_overrides FROM units WHERE id = $1`, id)
	unit, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rationdomain.ErrUnitNotFound
		}
		return nil, fmt.Errorf("query unit: %w", err)
	}
	return unit, nil
}

// ListUnits returns all receiving units ordered by unit code ascending.
func (r *CatalogRepository) ListUnits(ctx context.Context) ([]models.Unit, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, code, name, personnel, personnel_overrides FROM units ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, *unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

// WeekMenu assembles the nested day → meal → dish → ingredient read model
// for one ISO week.
func (r *CatalogRepository) WeekMenu(ctx context.Context, week, year int) ([]models.MenuDay, error) {
	from, to := domainsvcs.WeekBounds(week, year)

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT d.menu_date, m.name, m.headcount, di.name,
		       ing.product_id, ing.name, ing.per_person, ing.unit, ing.category_id
		FROM menu_days d
		JOIN menu_meals m ON m.day_id = d.id
		JOIN menu_dishes di ON di.meal_id = m.id
		LEFT JOIN menu_dish_ingredients ing ON ing.dish_id = di.id
		WHERE d.menu_date >= $1 AND d.menu_date < $2
		ORDER BY d.menu_date ASC, m.position ASC, di.position ASC, ing.position ASC`,
		from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("query week menu: %w", err)
	}
	defer rows.Close()

	var days []models.MenuDay
	for rows.Next() {
		var (
			dayDate       sql.NullTime
			mealName      string
			headcount     int
			dishName      string
			ingProductID  uuid.NullUUID
			ingName       sql.NullString
			ingPerPerson  sql.NullString
			ingUnit       sql.NullString
			ingCategoryID uuid.NullUUID
		)
		if err := rows.Scan(&dayDate, &mealName, &headcount, &dishName,
			&ingProductID, &ingName, &ingPerPerson, &ingUnit, &ingCategoryID); err != nil {
			return nil, fmt.Errorf("scan menu row: %w", err)
		}

		day := lastDay(&days, dayDate.Time)
		meal := lastMeal(day, mealName, headcount)
		dish := lastDish(meal, dishName)

		if ingName.Valid {
			perPerson := decimal.Zero
			if ingPerPerson.Valid {
				perPerson, err = decimal.NewFromString(ingPerPerson.String)
				if err != nil {
					return nil, fmt.Errorf("parse per-person quantity: %w", err)
				}
			}
			dish.Ingredients = append(dish.Ingredients, models.Ingredient{
				ProductID:  ingProductID.UUID,
				Name:       ingName.String,
				PerPerson:  perPerson,
				Unit:       ingUnit.String,
				CategoryID: ingCategoryID.UUID,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu rows: %w", err)
	}
	return days, nil
}

func scanUnit(row rowScanner) (*models.Unit, error) {
	var u models.Unit
	var overrides []byte
	if err := row.Scan(&u.ID, &u.Code, &u.Name, &u.Personnel, &overrides); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &u.PersonnelByDate); err != nil {
			return nil, fmt.Errorf("parse personnel overrides: %w", err)
		}
	}
	return &u, nil
}

// lastDay returns the trailing MenuDay for date, appending one when the scan
// moved to a new day. Rows arrive ordered, so append-only assembly is safe.
func lastDay(days *[]models.MenuDay, date time.Time) *models.MenuDay {
	if n := len(*days); n > 0 && (*days)[n-1].Date.Equal(date) {
		return &(*days)[n-1]
	}
	*days = append(*days, models.MenuDay{Date: date})
	return &(*days)[len(*days)-1]
}

func lastMeal(day *models.MenuDay, name string, headcount int) *models.Meal {
	if n := len(day.Meals); n > 0 && day.Meals[n-1].Name == name {
		return &day.Meals[n-1]
	}
	day.Meals = append(day.Meals, models.Meal{Name: name, Headcount: headcount})
	return &day.Meals[len(day.Meals)-1]
}

func lastDish(meal *models.Meal, name string) *models.Dish {
	if n := len(meal.Dishes); n > 0 && meal.Dishes[n-1].Name == name {
		return &meal.Dishes[n-1]
	}
	meal.Dishes = append(meal.Dishes, models.Dish{Name: name})
	return &meal.Dishes[len(meal.Dishes)-1]
}
