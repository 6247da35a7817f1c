package entities

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records who performed a mutating operation, for the audit trail
// kept by the store.
type AuditEntry struct {
	ID      uuid.UUID
	Actor   string
	Action  string
	Subject string
	At      time.Time
}

// NewAuditEntry creates an audit entry stamped with a fresh id and the
// current time.
func NewAuditEntry(actor, action, subject string) AuditEntry {
	return AuditEntry{
		ID:      uuid.New(),
		Actor:   actor,
		Action:  action,
		Subject: subject,
		At:      time.Now().UTC(),
	}
}
