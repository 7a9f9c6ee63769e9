package domain

import "github.com/shopspring/decimal"

// CartCalculations is the full monetary breakdown for a finalized cart.
// It is produced fresh per calculation and never mutated.
type CartCalculations struct {
	GrossSubtotal decimal.Decimal
	NetAmount     decimal.Decimal

	StandardVAT  decimal.Decimal
	VATExemption decimal.Decimal
	AdjustedVAT  decimal.Decimal

	SeniorDiscountAmount decimal.Decimal
	OtherDiscountAmount  decimal.Decimal
	TotalDiscountAmount  decimal.Decimal

	FinalTotal decimal.Decimal

	// BIR-style sales breakdown.
	VatableSales   decimal.Decimal
	VATExemptSales decimal.Decimal
	ZeroRatedSales decimal.Decimal

	NumberOfSeniors int
	TotalDiners     int
}

// EmptyCalculations is the documented all-zero result returned when the
// cart is empty or contains an invalid line item. Callers must treat it
// as "do not charge".
func EmptyCalculations() CartCalculations {
	z := decimal.Zero
	return CartCalculations{
		GrossSubtotal:        z,
		NetAmount:            z,
		StandardVAT:          z,
		VATExemption:         z,
		AdjustedVAT:          z,
		SeniorDiscountAmount: z,
		OtherDiscountAmount:  z,
		TotalDiscountAmount:  z,
		FinalTotal:           z,
		VatableSales:         z,
		VATExemptSales:       z,
		ZeroRatedSales:       z,
	}
}

// IsEmpty reports whether the result carries no charge.
func (c CartCalculations) IsEmpty() bool {
	return c.GrossSubtotal.IsZero() && c.FinalTotal.IsZero()
}
