package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssignRequest payload for assign and reassign endpoints.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
	Reason     string `json:"reason"`
}

// UnassignRequest payload.
type UnassignRequest struct {
	Reason string `json:"reason"`
}

// BulkAssignRequest payload.
type BulkAssignRequest struct {
	TicketIDs  []string `json:"ticket_ids"`
	AssigneeID string   `json:"assignee_id"`
	Reason     string   `json:"reason"`
}

// RecommendationResponse is one ranked auto-assignment candidate.
type RecommendationResponse struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// WorkloadResponse is one row of the workload report.
type WorkloadResponse struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	OpenCount       int    `json:"open_count"`
	InProgressCount int    `json:"in_progress_count"`
	Total           int    `json:"total"`
}

// AssignmentEventResponse is one audit-trail entry.
type AssignmentEventResponse struct {
	ID           string                `json:"id"`
	Kind         domain.AssignmentKind `json:"kind"`
	FromAssignee *string               `json:"from_assignee,omitempty"`
	ToAssignee   *string               `json:"to_assignee,omitempty"`
	ActorID      string                `json:"actor_id"`
	Reason       string                `json:"reason,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}
