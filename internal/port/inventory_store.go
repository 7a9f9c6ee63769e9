package port

import (
	"context"

	"github.com/shopspring/decimal"
)

type InventoryStore interface {
	// GetStock returns the current on-hand quantity for a stock record.
	GetStock(ctx context.Context, stockID string) (decimal.Decimal, error)

	// SetStock overwrites the on-hand quantity for a stock record.
	SetStock(ctx context.Context, stockID string, quantity decimal.Decimal) error
}
