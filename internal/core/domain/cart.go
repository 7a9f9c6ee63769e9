package domain

import "github.com/shopspring/decimal"

// DiscountType enumerates the manual discounts a cashier can apply.
// A cart carries at most one OtherDiscount; senior discounts are tracked
// separately because several seniors can share one table.
type DiscountType string

const (
	DiscountPWD           DiscountType = "pwd"
	DiscountEmployee      DiscountType = "employee"
	DiscountLoyalty       DiscountType = "loyalty"
	DiscountPromo         DiscountType = "promo"
	DiscountComplimentary DiscountType = "complimentary"
)

// CartItem is one finalized line of a cart. Prices are VAT-inclusive.
type CartItem struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Category    string
}

// LineTotal returns UnitPrice multiplied by Quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// SeniorDiscount identifies one qualifying senior-citizen diner.
type SeniorDiscount struct {
	ID             string
	IDNumber       string
	Name           string
	DiscountAmount decimal.Decimal
}

// OtherDiscount is the single non-senior discount applied to a cart.
// Amount is only read for DiscountPromo; the other types derive their
// amount from the cart subtotal.
type OtherDiscount struct {
	Type          DiscountType
	Amount        decimal.Decimal
	IDNumber      string
	Justification string
}
