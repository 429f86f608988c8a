package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action vocabulary. Every component that records or renders activity
// entries must use these values.
const (
	ActionAdminRegistered   = "admin_registered"
	ActionTeacherRegistered = "teacher_registered"
	ActionTeacherApproved   = "teacher_approved"
	ActionTeacherRejected   = "teacher_rejected"
	ActionTeacherDeleted    = "teacher_deleted"
)

// ActivityLog is an append-only record of one state-changing action. Entries
// are never mutated or deleted by normal flow.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	Details   datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt time.Time         `json:"created_at"`
}
