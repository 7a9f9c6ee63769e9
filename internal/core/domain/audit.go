package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord describes one inventory quantity change. Records are
// append-only and created after the stock write succeeds; a failed
// append never rolls the write back, so the movement ledger is
// best-effort rather than authoritative.
//
// Invariant for every record that exists:
// PreviousQuantity - QuantityChange == NewQuantity.
type AuditRecord struct {
	ID                     string
	InventoryStockID       string
	QuantityChange         decimal.Decimal
	PreviousQuantity       decimal.Decimal
	NewQuantity            decimal.Decimal
	ReferenceTransactionID string
	Note                   string
	CreatedAt              time.Time
}
