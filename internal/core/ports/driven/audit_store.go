package driven

import (
	"context"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

// AuditStore persists one record per transform-mode ModifyClass call. It
// never stores transformed class bytes (spec Non-goals) — only the outcome.
type AuditStore interface {
	RecordTransform(ctx context.Context, rec *domain.AuditRecord) error
}
