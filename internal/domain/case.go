package domain

import "time"

// CaseState enumerates lifecycle states for service cases.
type CaseState string

const (
	CaseStateOpen       CaseState = "OPEN"
	CaseStateInProgress CaseState = "IN_PROGRESS"
	CaseStateTest       CaseState = "TEST"
	CaseStateClosed     CaseState = "CLOSED"
)

// CasePriority enumerates urgency, fixed at creation.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "LOW"
	CasePriorityMedium CasePriority = "MEDIUM"
	CasePriorityHigh   CasePriority = "HIGH"
)

// ValidState reports whether s is one of the declared lifecycle states.
func ValidState(s CaseState) bool {
	switch s {
	case CaseStateOpen, CaseStateInProgress, CaseStateTest, CaseStateClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the declared priorities.
func ValidPriority(p CasePriority) bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh:
		return true
	}
	return false
}

// ServiceCase is the aggregate for tracked work items. OwnerID never changes
// after creation; State is the only field mutated through the lifecycle.
type ServiceCase struct {
	ID          int64
	Title       string
	Description string
	Priority    CasePriority
	State       CaseState
	OwnerID     int64
	CreatedAt   time.Time
	Comments    []Comment
}
