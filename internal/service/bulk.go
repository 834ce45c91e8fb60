package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// BulkAssignFailure records one ticket's failure inside a batch.
type BulkAssignFailure struct {
	TicketID  string `json:"ticket_id"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// BulkAssignResult accounts for every input ticket id exactly once, split
// across succeeded and failed in input order.
type BulkAssignResult struct {
	Succeeded []string            `json:"succeeded"`
	Failed    []BulkAssignFailure `json:"failed"`
}

// BulkAssignTickets applies one assignment across many tickets. Input shape
// is validated once up front; after that each ticket is processed
// independently and failures are collected rather than raised, so one bad
// ticket never aborts the batch.
func (s *AssignmentService) BulkAssignTickets(ctx context.Context, actor *domain.User, ticketIDs []string, assigneeID, reason string) (*BulkAssignResult, error) {
	if len(ticketIDs) == 0 {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidInput, "ticket_ids must not be empty", nil)
	}
	if assigneeID == "" {
		return nil, apperrors.NewValidationError(apperrors.CodeMissingAssignee, "assignee_id required", nil)
	}

	result := &BulkAssignResult{
		Succeeded: []string{},
		Failed:    []BulkAssignFailure{},
	}
	for _, ticketID := range ticketIDs {
		if _, err := s.AssignTicket(ctx, actor, ticketID, assigneeID, reason); err != nil {
			domainErr := apperrors.ToDomainError(err)
			result.Failed = append(result.Failed, BulkAssignFailure{
				TicketID:  ticketID,
				ErrorCode: domainErr.Code,
				Message:   domainErr.Message,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, ticketID)
	}
	return result, nil
}
