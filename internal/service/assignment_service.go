package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssignmentService handles ticket assignment operations. Every mutation
// checks the policy layer before touching the store and leaves an
// AssignmentEvent audit record behind.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	auditLog   repository.AssignmentEventRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	AuditRepo  repository.AssignmentEventRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		auditLog:   deps.AuditRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AssignTicket assigns a ticket to the given user. Assigning to the current
// assignee is an idempotent no-op returning the unchanged ticket.
func (s *AssignmentService) AssignTicket(ctx context.Context, actor *domain.User, ticketID, assigneeID, reason string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewForbidden("not permitted to assign tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.getEligibleAssignee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	if ticket.AssignedTo != nil && *ticket.AssignedTo == assignee.ID {
		return ticket, nil
	}

	return s.applyAssigneeChange(ctx, actor, ticket, &assignee.ID, domain.AssignmentKindAssign, reason)
}

// UnassignTicket clears a ticket's assignee. Unassigning an unassigned
// ticket is an idempotent no-op.
func (s *AssignmentService) UnassignTicket(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewForbidden("not permitted to assign tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedTo == nil {
		return ticket, nil
	}

	return s.applyAssigneeChange(ctx, actor, ticket, nil, domain.AssignmentKindUnassign, reason)
}

// ReassignTicket moves a ticket to a new assignee in a single persistence
// update, emitting one REASSIGN event carrying both sides.
func (s *AssignmentService) ReassignTicket(ctx context.Context, actor *domain.User, ticketID, newAssigneeID, reason string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewForbidden("not permitted to assign tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.getEligibleAssignee(ctx, newAssigneeID)
	if err != nil {
		return nil, err
	}

	if ticket.AssignedTo != nil && *ticket.AssignedTo == assignee.ID {
		return ticket, nil
	}

	return s.applyAssigneeChange(ctx, actor, ticket, &assignee.ID, domain.AssignmentKindReassign, reason)
}

// AutoAssignTicket picks the least-loaded active agent or admin and assigns
// the ticket to them. Ties fall to the most senior account.
func (s *AssignmentService) AutoAssignTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewForbidden("not permitted to assign tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	assignees, workloads, err := s.workloadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	assignee, ok := PickAssignee(assignees, workloads)
	if !ok {
		return nil, apperrors.NewNotAvailable(apperrors.CodeNoEligibleAssignee, "no active agent available for auto-assignment", nil)
	}

	if ticket.AssignedTo != nil && *ticket.AssignedTo == assignee.ID {
		return ticket, nil
	}

	return s.applyAssigneeChange(ctx, actor, ticket, &assignee.ID, domain.AssignmentKindAutoAssign, "auto-assigned by workload")
}

// GetAssignmentRecommendations returns all eligible assignees ranked by
// ascending load without committing an assignment. Ticket priority does not
// influence the ranking.
func (s *AssignmentService) GetAssignmentRecommendations(ctx context.Context, ticketID string) ([]AssignmentRecommendation, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	assignees, workloads, err := s.workloadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return RankAssignees(assignees, workloads), nil
}

// AssigneeWorkload pairs a workload with the account it belongs to, for
// human-facing reporting.
type AssigneeWorkload struct {
	User     domain.User
	Workload domain.Workload
}

// ComputeAssigneeWorkloads reports the live workload of every active agent
// and admin, least-loaded first.
func (s *AssignmentService) ComputeAssigneeWorkloads(ctx context.Context) ([]AssigneeWorkload, error) {
	assignees, workloads, err := s.workloadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	ranked := RankAssignees(assignees, workloads)

	byID := make(map[string]domain.User, len(assignees))
	for _, user := range assignees {
		byID[user.ID] = user
	}
	result := make([]AssigneeWorkload, 0, len(ranked))
	for _, rec := range ranked {
		result = append(result, AssigneeWorkload{
			User:     byID[rec.UserID],
			Workload: workloads[rec.UserID],
		})
	}
	return result, nil
}

// ListAssignmentEvents returns the audit trail for a ticket.
func (s *AssignmentService) ListAssignmentEvents(ctx context.Context, actor *domain.User, ticketID string, limit, offset int) ([]domain.AssignmentEvent, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.auditLog.ListByTicket(ctx, ticketID, limit, offset)
}

// workloadSnapshot fetches the live assignee list and grouped counts; the
// scoring itself is pure over this snapshot.
func (s *AssignmentService) workloadSnapshot(ctx context.Context) ([]domain.User, map[string]domain.Workload, error) {
	assignees, err := s.users.ListActiveAssignees(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	counts, err := s.tickets.CountByAssigneeAndStatus(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return assignees, ComputeWorkloads(assignees, counts), nil
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) getEligibleAssignee(ctx context.Context, assigneeID string) (*domain.User, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.EligibleAssignee() {
		return nil, apperrors.NewConflict(apperrors.CodeIneligibleAssignee,
			"assignee must be an active agent or admin", map[string]any{"user_id": assigneeID})
	}
	return assignee, nil
}

// applyAssigneeChange persists the new assignee, records the audit entry
// and publishes the domain event. Assignee changes never touch title,
// description or creator.
func (s *AssignmentService) applyAssigneeChange(ctx context.Context, actor *domain.User, ticket *domain.Ticket, newAssignee *string, kind domain.AssignmentKind, reason string) (*domain.Ticket, error) {
	oldAssignee := ticket.AssignedTo
	ticket.AssignedTo = newAssignee
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.auditLog.Create(ctx, &domain.AssignmentEvent{
		TicketID:     ticket.ID,
		Kind:         kind,
		FromAssignee: oldAssignee,
		ToAssignee:   newAssignee,
		ActorID:      actor.ID,
		Reason:       reason,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	eventType := events.EventTicketAssigned
	if kind == domain.AssignmentKindUnassign {
		eventType = events.EventTicketUnassigned
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketAssignedPayload{
			Kind:         kind,
			FromAssignee: oldAssignee,
			ToAssignee:   newAssignee,
			Reason:       reason,
		},
	})
	return ticket, nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
