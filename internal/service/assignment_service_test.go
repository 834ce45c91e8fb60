package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var fixtureBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func agentFixture(id string, createdAt time.Time) domain.User {
	return domain.User{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Agent",
		LastName:  id,
		Role:      domain.RoleAgent,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func adminFixture(id string) domain.User {
	return domain.User{
		ID:        id,
		Email:     id + "@example.com",
		Role:      domain.RoleAdmin,
		IsActive:  true,
		CreatedAt: fixtureBase,
	}
}

func endUserFixture(id string) domain.User {
	return domain.User{
		ID:        id,
		Email:     id + "@example.com",
		Role:      domain.RoleUser,
		IsActive:  true,
		CreatedAt: fixtureBase,
	}
}

func ticketFixture(id, createdBy string, assignedTo *string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:          id,
		Title:       "printer on fire",
		Description: "it is very on fire",
		Status:      status,
		Priority:    domain.TicketPriorityHigh,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
		CreatedAt:   fixtureBase,
		UpdatedAt:   fixtureBase,
	}
}

type assignmentHarness struct {
	service    *AssignmentService
	tickets    *memTicketRepo
	users      *memUserRepo
	audit      *memAuditRepo
	dispatcher *recordingDispatcher
}

func newAssignmentHarness(tickets []domain.Ticket, users []domain.User) *assignmentHarness {
	h := &assignmentHarness{
		tickets:    newMemTicketRepo(tickets...),
		users:      newMemUserRepo(users...),
		audit:      newMemAuditRepo(),
		dispatcher: newRecordingDispatcher(),
	}
	h.service = NewAssignmentService(AssignmentDependencies{
		TicketRepo: h.tickets,
		UserRepo:   h.users,
		AuditRepo:  h.audit,
		Dispatcher: h.dispatcher,
	})
	return h
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

func TestAssignTicketForbiddenWithoutAssignCapability(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	requester := endUserFixture("user-1")
	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", requester.ID, nil, domain.TicketStatusOpen)},
		[]domain.User{agent, requester},
	)

	_, err := h.service.AssignTicket(context.Background(), &requester, "t1", agent.ID, "")
	requireCode(t, err, apperrors.CodeForbidden)

	if len(h.audit.events) != 0 {
		t.Fatalf("policy violation must be rejected before any mutation, found %d audit entries", len(h.audit.events))
	}
	ticket, _ := h.tickets.GetByID(context.Background(), "t1")
	if ticket.AssignedTo != nil {
		t.Fatalf("ticket must remain unassigned, got %v", *ticket.AssignedTo)
	}
}

func TestAssignTicketMissingTicket(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	h := newAssignmentHarness(nil, []domain.User{agent})

	_, err := h.service.AssignTicket(context.Background(), &agent, "missing", agent.ID, "")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestAssignTicketMissingAssignee(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", "user-1", nil, domain.TicketStatusOpen)},
		[]domain.User{agent},
	)

	_, err := h.service.AssignTicket(context.Background(), &agent, "t1", "ghost", "")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestAssignTicketIneligibleAssignee(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	inactive := agentFixture("agent-2", fixtureBase)
	inactive.IsActive = false
	requester := endUserFixture("user-1")

	tests := []struct {
		name       string
		assigneeID string
	}{
		{name: "end-user role", assigneeID: requester.ID},
		{name: "inactive agent", assigneeID: inactive.ID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newAssignmentHarness(
				[]domain.Ticket{ticketFixture("t1", requester.ID, nil, domain.TicketStatusOpen)},
				[]domain.User{agent, inactive, requester},
			)
			_, err := h.service.AssignTicket(context.Background(), &agent, "t1", tc.assigneeID, "")
			requireCode(t, err, apperrors.CodeIneligibleAssignee)
		})
	}
}

func TestAssignTicketSuccess(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	admin := adminFixture("admin-1")
	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", "user-1", nil, domain.TicketStatusOpen)},
		[]domain.User{agent, admin},
	)

	ticket, err := h.service.AssignTicket(context.Background(), &admin, "t1", agent.ID, "knows printers")
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != agent.ID {
		t.Fatalf("expected assignee %s, got %v", agent.ID, ticket.AssignedTo)
	}
	if !ticket.UpdatedAt.After(fixtureBase) {
		t.Fatal("updatedAt must be bumped on assignment")
	}

	records := h.audit.byKind(domain.AssignmentKindAssign)
	if len(records) != 1 {
		t.Fatalf("expected 1 ASSIGN audit record, got %d", len(records))
	}
	if records[0].ActorID != admin.ID || records[0].Reason != "knows printers" {
		t.Fatalf("unexpected audit record: %+v", records[0])
	}
	if published := h.dispatcher.byType(events.EventTicketAssigned); len(published) != 1 {
		t.Fatalf("expected 1 ticket_assigned event, got %d", len(published))
	}
}

func TestAssignTicketSameAssigneeIsNoOp(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", "user-1", strPtr(agent.ID), domain.TicketStatusOpen)},
		[]domain.User{agent},
	)

	ticket, err := h.service.AssignTicket(context.Background(), &agent, "t1", agent.ID, "")
	if err != nil {
		t.Fatalf("re-assigning to current assignee must not error: %v", err)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != agent.ID {
		t.Fatalf("assignee must be unchanged, got %v", ticket.AssignedTo)
	}
	if len(h.audit.events) != 0 || len(h.dispatcher.published) != 0 {
		t.Fatal("no-op assignment must not record audit entries or publish events")
	}
}

func TestUnassignTicketIsIdempotent(t *testing.T) {
	agent := agentFixture("agent-1", fixtureBase)
	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", "user-1", strPtr(agent.ID), domain.TicketStatusOpen)},
		[]domain.User{agent},
	)

	first, err := h.service.UnassignTicket(context.Background(), &agent, "t1", "going on leave")
	if err != nil {
		t.Fatalf("first unassign failed: %v", err)
	}
	if first.AssignedTo != nil {
		t.Fatal("first unassign must clear assignee")
	}
	second, err := h.service.UnassignTicket(context.Background(), &agent, "t1", "")
	if err != nil {
		t.Fatalf("second unassign must be a no-op, got: %v", err)
	}
	if second.AssignedTo != nil {
		t.Fatal("second unassign must leave assignee nil")
	}
	if got := len(h.audit.byKind(domain.AssignmentKindUnassign)); got != 1 {
		t.Fatalf("expected exactly 1 UNASSIGN audit record, got %d", got)
	}
	if got := len(h.dispatcher.byType(events.EventTicketUnassigned)); got != 1 {
		t.Fatalf("expected exactly 1 ticket_unassigned event, got %d", got)
	}
}

func TestReassignMatchesUnassignThenAssignEndState(t *testing.T) {
	agentX := agentFixture("agent-x", fixtureBase)
	agentY := agentFixture("agent-y", fixtureBase.Add(time.Hour))
	admin := adminFixture("admin-1")

	seed := func() []domain.Ticket {
		return []domain.Ticket{ticketFixture("t1", "user-1", strPtr(agentX.ID), domain.TicketStatusInProgress)}
	}
	users := []domain.User{agentX, agentY, admin}

	viaReassign := newAssignmentHarness(seed(), users)
	if _, err := viaReassign.service.ReassignTicket(context.Background(), &admin, "t1", agentY.ID, "rebalance"); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}

	viaTwoSteps := newAssignmentHarness(seed(), users)
	if _, err := viaTwoSteps.service.UnassignTicket(context.Background(), &admin, "t1", ""); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if _, err := viaTwoSteps.service.AssignTicket(context.Background(), &admin, "t1", agentY.ID, ""); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	single, _ := viaReassign.tickets.GetByID(context.Background(), "t1")
	double, _ := viaTwoSteps.tickets.GetByID(context.Background(), "t1")
	if single.AssignedTo == nil || double.AssignedTo == nil || *single.AssignedTo != *double.AssignedTo {
		t.Fatalf("end states differ: %v vs %v", single.AssignedTo, double.AssignedTo)
	}

	records := viaReassign.audit.byKind(domain.AssignmentKindReassign)
	if len(records) != 1 {
		t.Fatalf("expected a single REASSIGN audit record, got %d", len(records))
	}
	if records[0].FromAssignee == nil || *records[0].FromAssignee != agentX.ID {
		t.Fatalf("REASSIGN record must carry the old assignee, got %v", records[0].FromAssignee)
	}
	if records[0].ToAssignee == nil || *records[0].ToAssignee != agentY.ID {
		t.Fatalf("REASSIGN record must carry the new assignee, got %v", records[0].ToAssignee)
	}
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	busy := agentFixture("agent-busy", fixtureBase)
	idle := agentFixture("agent-idle", fixtureBase.Add(time.Hour))
	admin := adminFixture("admin-1")
	h := newAssignmentHarness(
		[]domain.Ticket{
			ticketFixture("t1", "user-1", strPtr(busy.ID), domain.TicketStatusOpen),
			ticketFixture("t2", "user-1", strPtr(busy.ID), domain.TicketStatusInProgress),
			ticketFixture("t3", "user-1", strPtr(admin.ID), domain.TicketStatusOpen),
			ticketFixture("t4", "user-1", strPtr(admin.ID), domain.TicketStatusOpen),
			ticketFixture("t5", "user-2", nil, domain.TicketStatusOpen),
		},
		[]domain.User{busy, idle, admin},
	)

	ticket, err := h.service.AutoAssignTicket(context.Background(), &admin, "t5")
	if err != nil {
		t.Fatalf("auto-assign failed: %v", err)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != idle.ID {
		t.Fatalf("expected least-loaded agent %s, got %v", idle.ID, ticket.AssignedTo)
	}
	if got := len(h.audit.byKind(domain.AssignmentKindAutoAssign)); got != 1 {
		t.Fatalf("expected 1 AUTO_ASSIGN audit record, got %d", got)
	}
}

func TestAutoAssignTieBreaksBySeniority(t *testing.T) {
	junior := agentFixture("agent-junior", fixtureBase.Add(48*time.Hour))
	senior := agentFixture("agent-senior", fixtureBase)
	h := newAssignmentHarness(
		[]domain.Ticket{
			// equal load: one open ticket each
			ticketFixture("t1", "user-1", strPtr(junior.ID), domain.TicketStatusOpen),
			ticketFixture("t2", "user-1", strPtr(senior.ID), domain.TicketStatusOpen),
			ticketFixture("t3", "user-2", nil, domain.TicketStatusOpen),
		},
		[]domain.User{junior, senior},
	)

	ticket, err := h.service.AutoAssignTicket(context.Background(), &senior, "t3")
	if err != nil {
		t.Fatalf("auto-assign failed: %v", err)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != senior.ID {
		t.Fatalf("tie must fall to the earliest-created account %s, got %v", senior.ID, ticket.AssignedTo)
	}
}

func TestAutoAssignNoEligibleAssignee(t *testing.T) {
	admin := adminFixture("admin-1")
	admin.IsActive = false
	requester := endUserFixture("user-1")
	adminActor := adminFixture("admin-actor")

	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", requester.ID, nil, domain.TicketStatusOpen)},
		[]domain.User{admin, requester},
	)

	_, err := h.service.AutoAssignTicket(context.Background(), &adminActor, "t1")
	requireCode(t, err, apperrors.CodeNoEligibleAssignee)
}

func TestAutoAssignNeverSelectsIneligibleUsers(t *testing.T) {
	inactive := agentFixture("agent-inactive", fixtureBase)
	inactive.IsActive = false
	requester := endUserFixture("user-1")
	active := agentFixture("agent-active", fixtureBase.Add(72*time.Hour))
	admin := adminFixture("admin-1")
	admin.CreatedAt = fixtureBase.Add(96 * time.Hour)

	h := newAssignmentHarness(
		[]domain.Ticket{ticketFixture("t1", requester.ID, nil, domain.TicketStatusOpen)},
		[]domain.User{inactive, requester, active, admin},
	)

	for i := 0; i < 5; i++ {
		ticket, err := h.service.AutoAssignTicket(context.Background(), &admin, "t1")
		if err != nil {
			t.Fatalf("auto-assign failed: %v", err)
		}
		assignee, _ := h.users.GetByID(context.Background(), *ticket.AssignedTo)
		if !assignee.EligibleAssignee() {
			t.Fatalf("auto-assign selected ineligible user %s", assignee.ID)
		}
		if _, err := h.service.UnassignTicket(context.Background(), &admin, "t1", ""); err != nil {
			t.Fatalf("unassign failed: %v", err)
		}
	}
}

func TestGetAssignmentRecommendationsRanked(t *testing.T) {
	loaded := agentFixture("agent-loaded", fixtureBase)
	light := agentFixture("agent-light", fixtureBase.Add(time.Hour))
	h := newAssignmentHarness(
		[]domain.Ticket{
			ticketFixture("t1", "user-1", strPtr(loaded.ID), domain.TicketStatusOpen),
			ticketFixture("t2", "user-1", strPtr(loaded.ID), domain.TicketStatusInProgress),
			ticketFixture("t3", "user-1", strPtr(light.ID), domain.TicketStatusOpen),
			// closed tickets never count toward workload
			ticketFixture("t4", "user-1", strPtr(light.ID), domain.TicketStatusClosed),
			ticketFixture("t5", "user-2", nil, domain.TicketStatusOpen),
		},
		[]domain.User{loaded, light},
	)

	recommendations, err := h.service.GetAssignmentRecommendations(context.Background(), "t5")
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}
	if len(recommendations) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(recommendations))
	}
	if recommendations[0].UserID != light.ID || recommendations[0].Score != 1 {
		t.Fatalf("expected %s with score 1 first, got %+v", light.ID, recommendations[0])
	}
	if recommendations[1].UserID != loaded.ID || recommendations[1].Score != 2 {
		t.Fatalf("expected %s with score 2 second, got %+v", loaded.ID, recommendations[1])
	}
}
