package postgres

import (
	"context"
	"fmt"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore persists transform audit records to Postgres.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates an audit store over an already-connected DB. Call
// db.InitSchema once at startup so audit_records exists.
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// RecordTransform inserts one row per transform outcome.
func (s *AuditStore) RecordTransform(ctx context.Context, rec *domain.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records (class_name, modified, mixins_applied, mixins_failed, error, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ClassName, rec.Modified, rec.MixinsApplied, rec.MixinsFailed, rec.Error, rec.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
