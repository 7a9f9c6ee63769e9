package service

import (
	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

// Listed prices are VAT-inclusive at the statutory 12% rate. Senior and
// PWD discounts are 20% of the VAT-exclusive amount.
var (
	vatDivisor    = decimal.RequireFromString("1.12")
	vatRate       = decimal.RequireFromString("0.12")
	statutoryRate = decimal.RequireFromString("0.20")
	employeeRate  = decimal.RequireFromString("0.15")
	loyaltyRate   = decimal.RequireFromString("0.10")
)

// PricingEngine is the single authoritative calculator for a finalized
// cart. It is pure: no shared state, safe for concurrent use.
type PricingEngine struct {
	bogo  *BOGODetector
	combo *ComboDetector
}

func NewPricingEngine(bogo *BOGODetector, combo *ComboDetector) *PricingEngine {
	return &PricingEngine{bogo: bogo, combo: combo}
}

// ComputeTotals produces the full monetary breakdown for a cart. An empty
// cart, or any line item with a non-positive price or quantity, yields
// domain.EmptyCalculations: the caller must not charge on that result.
// The final total is never clamped; input sanity is the caller's job.
func (e *PricingEngine) ComputeTotals(
	items []domain.CartItem,
	seniorDiscounts []domain.SeniorDiscount,
	otherDiscount *domain.OtherDiscount,
	totalDiners int,
) domain.CartCalculations {
	if len(items) == 0 {
		return domain.EmptyCalculations()
	}
	gross := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 || !item.UnitPrice.IsPositive() {
			return domain.EmptyCalculations()
		}
		gross = gross.Add(item.LineTotal())
	}

	numSeniors := len(seniorDiscounts)
	effectiveDiners := totalDiners
	if numSeniors > effectiveDiners {
		effectiveDiners = numSeniors
	}

	var (
		netAmount      = gross.Div(vatDivisor)
		vatExemption   = decimal.Zero
		seniorDiscount = decimal.Zero
		otherAmount    = decimal.Zero
		vatableSales   = gross
		vatExemptSales = decimal.Zero
	)

	isPWD := otherDiscount != nil && otherDiscount.Type == domain.DiscountPWD
	switch {
	case isPWD:
		// The whole transaction is VAT-exempt; the senior allocation
		// path is not taken even if senior discounts are present.
		net := gross.Div(vatDivisor)
		netAmount = net
		vatExemption = gross.Sub(net)
		vatableSales = decimal.Zero
		vatExemptSales = net
		otherAmount = net.Mul(statutoryRate)

	case numSeniors > 0 && effectiveDiners > 0:
		// Allocate the gross evenly per diner, exempt the senior share.
		perPersonShare := gross.Div(decimal.NewFromInt(int64(effectiveDiners)))
		seniorShare := perPersonShare.Mul(decimal.NewFromInt(int64(numSeniors)))
		seniorNet := seniorShare.Div(vatDivisor)
		vatExemption = seniorShare.Sub(seniorNet)
		seniorDiscount = seniorNet.Mul(statutoryRate)
		vatableSales = gross.Sub(seniorShare)
		netAmount = seniorNet.Add(vatableSales.Div(vatDivisor))
		vatExemptSales = seniorNet
	}

	if otherDiscount != nil && !isPWD {
		switch otherDiscount.Type {
		case domain.DiscountEmployee:
			otherAmount = gross.Mul(employeeRate)
		case domain.DiscountLoyalty:
			otherAmount = gross.Mul(loyaltyRate)
		case domain.DiscountPromo:
			otherAmount = otherDiscount.Amount
		case domain.DiscountComplimentary:
			otherAmount = gross
		}
	}

	// Automatic promotions always run and stack with manual discounts.
	otherAmount = otherAmount.
		Add(e.bogo.Analyze(items).DiscountAmount).
		Add(e.combo.Analyze(items).DiscountAmount)

	standardVAT := gross.Mul(vatRate).Div(vatDivisor)
	adjustedVAT := standardVAT.Sub(vatExemption)
	if adjustedVAT.IsNegative() {
		adjustedVAT = decimal.Zero
	}

	return domain.CartCalculations{
		GrossSubtotal:        gross,
		NetAmount:            netAmount,
		StandardVAT:          standardVAT,
		VATExemption:         vatExemption,
		AdjustedVAT:          adjustedVAT,
		SeniorDiscountAmount: seniorDiscount,
		OtherDiscountAmount:  otherAmount,
		TotalDiscountAmount:  seniorDiscount.Add(otherAmount),
		FinalTotal:           gross.Sub(vatExemption).Sub(seniorDiscount).Sub(otherAmount),
		VatableSales:         vatableSales,
		VATExemptSales:       vatExemptSales,
		ZeroRatedSales:       decimal.Zero,
		NumberOfSeniors:      numSeniors,
		TotalDiners:          effectiveDiners,
	}
}
