package models

import "time"

// Role identifies the capability class of an account.
type Role string

// Status tracks a teacher account through the approval lifecycle. Admin
// accounts carry StatusApproved from creation and never transition.
type Status string

// Route is the destination the authorization gate resolves a session to.
type Route string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const (
	RouteAdminDashboard   Route = "admin_dashboard"
	RouteTeacherDashboard Route = "teacher_dashboard"
	RouteAwaitingApproval Route = "awaiting_approval"
	RouteSignedOut        Route = "signed_out"
)

// Account stores role and approval metadata for an authenticated identity.
// ID is the identity store's stable identifier; the role never changes after
// creation and only the status field is mutated, by an admin.
type Account struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	Status    Status    `gorm:"size:16;not null" json:"status"`
	Workplace string    `gorm:"size:255" json:"workplace"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Route is the single authorization gate. Every entry point routes a session
// through here instead of re-checking role/status combinations locally.
func (a Account) Route() Route {
	switch {
	case a.Role == RoleAdmin:
		return RouteAdminDashboard
	case a.Role == RoleTeacher && a.Status == StatusApproved:
		return RouteTeacherDashboard
	case a.Role == RoleTeacher && a.Status == StatusPending:
		return RouteAwaitingApproval
	default:
		return RouteSignedOut
	}
}

// CanTransitionTo reports whether the approval lifecycle permits moving to
// next. Approval and rejection are both terminal: there is deliberately no
// edge out of either state.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusApproved || next == StatusRejected
}

// AdminGrant is the singleton row claimed by the first registrant. The unique
// slot column turns the "does an admin exist" check into a conditional insert,
// so two racing registrations cannot both become admin.
type AdminGrant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slot      int       `gorm:"uniqueIndex;not null" json:"slot"`
	AccountID string    `gorm:"size:36;not null" json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}
