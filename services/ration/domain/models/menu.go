package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is one (product, quantity-per-person) pair inside a dish.
// ProductID may be uuid.Nil when the menu editor stored only a free-text
// name; resolution then falls back to a case-insensitive name match.
type Ingredient struct {
	ProductID  uuid.UUID
	Name       string
	PerPerson  decimal.Decimal // quantity per person served, in Unit
	Unit       string
	CategoryID uuid.UUID
}

// Dish is a prepared item scheduled for one meal.
type Dish struct {
	Name        string
	Ingredients []Ingredient
}

// Meal is one serving occasion of a day with its own audience size.
type Meal struct {
	Name      string // breakfast, lunch, dinner
	Headcount int
	Dishes    []Dish
}

// MenuDay is the read model for one calendar day of the weekly menu,
// supplied by the menu-planning collaborator.
type MenuDay struct {
	Date  time.Time
	Meals []Meal
}

// Product is the catalog read model for one provision item.
type Product struct {
	ID         uuid.UUID
	Name       string
	Unit       string
	CategoryID uuid.UUID
}
