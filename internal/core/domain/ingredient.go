package domain

import "github.com/shopspring/decimal"

// IngredientCategory classifies a deduction rule for mix-and-match
// products. Base and packaging rules always apply; choice rules apply
// only when the customer selected them.
type IngredientCategory string

const (
	CategoryBase      IngredientCategory = "base"
	CategoryChoice    IngredientCategory = "choice"
	CategoryPackaging IngredientCategory = "packaging"
)

// IngredientRequirement maps one sold product unit to a raw-material
// deduction. Authored by recipe management; read-only at settlement time.
type IngredientRequirement struct {
	IngredientName   string             `json:"ingredient_name"`
	QuantityPerUnit  decimal.Decimal    `json:"quantity_per_unit"`
	InventoryStockID string             `json:"inventory_stock_id"`
	Category         IngredientCategory `json:"category"`
}
