package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// ResourceType represents the kind of catalog resource
type ResourceType string

const (
	ResourceBook    ResourceType = "book"
	ResourceJournal ResourceType = "journal"
	ResourceAudio   ResourceType = "audio"
)

// IsValid reports whether the resource type is one of the known kinds
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceBook, ResourceJournal, ResourceAudio:
		return true
	}
	return false
}

// LoanStatus represents the lifecycle state of a loan.
// A loan is created active and transitions to returned exactly once.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// DueStatus classifies an active loan against its due date.
// Derived on demand, never stored.
type DueStatus string

const (
	DueOnTime  DueStatus = "on_time"
	DueSoon    DueStatus = "due_soon"
	DueOverdue DueStatus = "overdue"
)

// DefaultDueSoonDays is the window (in whole days) before the due date
// in which a loan counts as due-soon.
const DefaultDueSoonDays = 3

// DaysUntilDue returns the number of whole days between now and dueAt.
// Partial days truncate toward zero, so a loan due later today already
// reports zero days left.
func DaysUntilDue(dueAt, now time.Time) int {
	return int(dueAt.Sub(now).Hours() / 24)
}

// ClassifyDue buckets a loan by its remaining whole days:
// more than dueSoonDays days left is on-time, one..dueSoonDays is
// due-soon, zero or negative is overdue.
func ClassifyDue(dueAt, now time.Time, dueSoonDays int) DueStatus {
	days := DaysUntilDue(dueAt, now)
	switch {
	case days > dueSoonDays:
		return DueOnTime
	case days > 0:
		return DueSoon
	default:
		return DueOverdue
	}
}
