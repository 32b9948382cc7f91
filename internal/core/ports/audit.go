package ports

import (
	"context"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// AuditRepository appends audit records. There is deliberately no read or
// delete operation.
type AuditRepository interface {
	Insert(ctx context.Context, record *domain.AuditRecord) error
}

// AuditRecorder is the best-effort, fire-and-forget audit sink used by
// services. Implementations never return an error to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, actorID string, action domain.ActionKind, entity domain.EntityKind, entityID, details string)
}
