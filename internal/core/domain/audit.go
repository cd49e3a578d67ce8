package domain

import "time"

// AuditAction names a mutation applied to a milk record.
type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditDeleted AuditAction = "deleted"
)

// AuditEntry records who changed which milk record and when.
type AuditEntry struct {
	Action      AuditAction
	RecordID    string
	OwnerUserID string
	ActorID     string
	Amount      float64
	At          time.Time
}
