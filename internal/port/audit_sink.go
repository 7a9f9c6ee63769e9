package port

import (
	"context"

	"github.com/crofflehub/settlement/internal/core/domain"
)

type AuditSink interface {
	// Append writes one movement record to the append-only ledger.
	Append(ctx context.Context, record domain.AuditRecord) error
}
