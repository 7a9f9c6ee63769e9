package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

type ComboPair struct {
	CroffleName string
	CoffeeName  string
	CoffeePrice decimal.Decimal
}

type ComboBreakdown struct {
	CoffeeName string
	Pairs      int
	Discount   decimal.Decimal
}

type ComboResult struct {
	DiscountAmount decimal.Decimal
	PairedItems    []ComboPair
	Breakdown      []ComboBreakdown
}

// ComboDetector pairs premium croffles with coffees so that each paired
// coffee is free. Pure; safe for concurrent use.
type ComboDetector struct {
	minCrofflePrice decimal.Decimal
	coffeePatterns  []string
}

func NewComboDetector() *ComboDetector {
	return &ComboDetector{
		minCrofflePrice: decimal.RequireFromString("125"),
		coffeePatterns:  []string{"americano", "cappuccino", "cafe latte", "café latte"},
	}
}

// Analyze flattens quantities to units, sorts eligible coffees by price
// descending so the most expensive coffees are given away first, and
// pairs greedily one croffle to one coffee.
func (d *ComboDetector) Analyze(items []domain.CartItem) ComboResult {
	result := ComboResult{DiscountAmount: decimal.Zero}

	type unit struct {
		name  string
		price decimal.Decimal
	}
	var croffles, coffees []unit
	for _, item := range items {
		switch {
		case d.isEligibleCroffle(item):
			for i := 0; i < item.Quantity; i++ {
				croffles = append(croffles, unit{item.ProductName, item.UnitPrice})
			}
		case d.isEligibleCoffee(item):
			for i := 0; i < item.Quantity; i++ {
				coffees = append(coffees, unit{item.ProductName, item.UnitPrice})
			}
		}
	}

	sort.SliceStable(coffees, func(i, j int) bool {
		return coffees[i].price.GreaterThan(coffees[j].price)
	})

	pairs := len(croffles)
	if len(coffees) < pairs {
		pairs = len(coffees)
	}

	byCoffee := make(map[string]*ComboBreakdown)
	var order []string
	for i := 0; i < pairs; i++ {
		coffee := coffees[i]
		result.DiscountAmount = result.DiscountAmount.Add(coffee.price)
		result.PairedItems = append(result.PairedItems, ComboPair{
			CroffleName: croffles[i].name,
			CoffeeName:  coffee.name,
			CoffeePrice: coffee.price,
		})

		b, ok := byCoffee[coffee.name]
		if !ok {
			b = &ComboBreakdown{CoffeeName: coffee.name, Discount: decimal.Zero}
			byCoffee[coffee.name] = b
			order = append(order, coffee.name)
		}
		b.Pairs++
		b.Discount = b.Discount.Add(coffee.price)
	}
	for _, name := range order {
		result.Breakdown = append(result.Breakdown, *byCoffee[name])
	}

	return result
}

func (d *ComboDetector) isEligibleCroffle(item domain.CartItem) bool {
	return strings.Contains(strings.ToLower(item.Category), "croffle") &&
		item.UnitPrice.GreaterThanOrEqual(d.minCrofflePrice)
}

func (d *ComboDetector) isEligibleCoffee(item domain.CartItem) bool {
	name := strings.ToLower(item.ProductName)
	for _, pattern := range d.coffeePatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
