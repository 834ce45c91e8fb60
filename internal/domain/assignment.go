package domain

import "time"

// AssignmentKind captures how an assignee change came about.
type AssignmentKind string

const (
	AssignmentKindAssign     AssignmentKind = "ASSIGN"
	AssignmentKindUnassign   AssignmentKind = "UNASSIGN"
	AssignmentKindReassign   AssignmentKind = "REASSIGN"
	AssignmentKindAutoAssign AssignmentKind = "AUTO_ASSIGN"
)

// AssignmentEvent is an immutable audit record of an assignee change.
type AssignmentEvent struct {
	ID           string
	TicketID     string
	Kind         AssignmentKind
	FromAssignee *string
	ToAssignee   *string
	ActorID      string
	Reason       string
	CreatedAt    time.Time
}

// Workload is the computed open/in-progress load of one assignee.
// It is derived at call time, never stored.
type Workload struct {
	UserID          string
	OpenCount       int
	InProgressCount int
}

// Total returns the combined load used for auto-assignment scoring.
func (w Workload) Total() int {
	return w.OpenCount + w.InProgressCount
}
