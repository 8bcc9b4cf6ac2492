package models

import (
	"gorm.io/gorm"
)

// AuditLog records one business action for review. Writes are
// fire-and-forget: a failed audit write never aborts the operation.
type AuditLog struct {
	gorm.Model

	ActorID    string `json:"actor_id" gorm:"index"`
	Action     string `json:"action" gorm:"index"` // e.g. duty_started, duty_completed
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id" gorm:"index"`
	Details    string `json:"details"` // JSON-encoded detail map
}

// Audit action constants
const (
	AuditDutyStarted     = "duty_started"
	AuditDutyCompleted   = "duty_completed"
	AuditDutyApproved    = "duty_approved"
	AuditDutyRejected    = "duty_rejected"
	AuditDriverVerified  = "driver_verified"
	AuditDriverSuspended = "driver_suspended"
	AuditLedgerEntry     = "ledger_entry"
)
