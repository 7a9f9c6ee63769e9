package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

// BOGORule pairs two units sold at exactly UnitPrice for a fixed
// discount. Rules never mix across price buckets.
type BOGORule struct {
	UnitPrice       decimal.Decimal
	DiscountPerPair decimal.Decimal
}

// DefaultBOGORules covers the croffle price points; each discount is 50%
// of the triggering price.
func DefaultBOGORules() []BOGORule {
	return []BOGORule{
		{UnitPrice: decimal.RequireFromString("125"), DiscountPerPair: decimal.RequireFromString("62.5")},
		{UnitPrice: decimal.RequireFromString("65"), DiscountPerPair: decimal.RequireFromString("32.5")},
		{UnitPrice: decimal.RequireFromString("99"), DiscountPerPair: decimal.RequireFromString("49.5")},
	}
}

type BOGOBreakdown struct {
	UnitPrice decimal.Decimal
	Pairs     int
	Discount  decimal.Decimal
}

type BOGOResult struct {
	DiscountAmount decimal.Decimal
	EligibleItems  []domain.CartItem
	Breakdown      []BOGOBreakdown
}

// BOGODetector finds buy-one-get-one pairs among croffle-class items.
// Pure and idempotent; the rule table is injected so tests can swap it.
type BOGODetector struct {
	rules []BOGORule
}

func NewBOGODetector(rules []BOGORule) *BOGODetector {
	return &BOGODetector{rules: rules}
}

// Analyze groups croffle-class items by exact unit price and discounts
// floor(quantity/2) pairs per bucket. Odd units earn nothing.
func (d *BOGODetector) Analyze(items []domain.CartItem) BOGOResult {
	result := BOGOResult{DiscountAmount: decimal.Zero}

	for _, rule := range d.rules {
		total := 0
		for _, item := range items {
			if !isCroffleClass(item) || !item.UnitPrice.Equal(rule.UnitPrice) {
				continue
			}
			total += item.Quantity
			result.EligibleItems = append(result.EligibleItems, item)
		}

		pairs := total / 2
		if pairs == 0 {
			continue
		}
		discount := rule.DiscountPerPair.Mul(decimal.NewFromInt(int64(pairs)))
		result.DiscountAmount = result.DiscountAmount.Add(discount)
		result.Breakdown = append(result.Breakdown, BOGOBreakdown{
			UnitPrice: rule.UnitPrice,
			Pairs:     pairs,
			Discount:  discount,
		})
	}

	return result
}

func isCroffleClass(item domain.CartItem) bool {
	return strings.Contains(strings.ToLower(item.Category), "croffle") ||
		strings.Contains(strings.ToLower(item.ProductName), "croffle")
}
