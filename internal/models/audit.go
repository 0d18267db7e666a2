package models

import (
	"encoding/json"
	"time"
)

// CommandAudit records one settled command against a batch. The audit trail
// is observability only; the upstream remains the source of truth for the
// data the command touched.
type CommandAudit struct {
	ID         int64           `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	BatchID    string          `db:"batch_id" json:"batch_id"`
	StudentID  *string         `db:"student_id" json:"student_id,omitempty"`
	Outcome    string          `db:"outcome" json:"outcome"`
	RolledBack bool            `db:"rolled_back" json:"rolled_back"`
	Detail     json.RawMessage `db:"detail" json:"detail,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Audit outcomes.
const (
	AuditOutcomeConfirmed  = "CONFIRMED"
	AuditOutcomeRolledBack = "ROLLED_BACK"
	AuditOutcomeRejected   = "REJECTED"
)
