package domain

import "time"

// AuditRecord is one row recorded for a transform-mode ModifyClass call. It
// does not persist the transformed class bytes (that remains a Non-goal);
// it records which mixins applied to which class and with what outcome.
type AuditRecord struct {
	ClassName     string
	Modified      bool
	MixinsApplied int
	MixinsFailed  int
	Error         string
	OccurredAt    time.Time
}
