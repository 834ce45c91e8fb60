// Package policy centralizes the role/permission matrix. Every mutating
// operation consults these checks before touching the store; no other
// package compares role strings directly.
package policy

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Action is a capability an actor may hold on a ticket.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionAssign Action = "assign"
	ActionDelete Action = "delete"
)

// CanView reports whether actor may read the ticket.
// Admins and agents see everything; end-users only their own tickets.
func CanView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	return ticket.CreatedBy == actor.ID
}

// CanEdit reports whether actor may modify the ticket's content or status.
// End-users may only edit their own tickets and lose edit rights once the
// ticket is CLOSED; staff keep edit rights regardless of status.
func CanEdit(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	if ticket.CreatedBy != actor.ID {
		return false
	}
	return ticket.Status != domain.TicketStatusClosed
}

// CanAssign reports whether actor may change ticket assignees.
func CanAssign(actor *domain.User) bool {
	return actor != nil && actor.IsStaff()
}

// CanDelete reports whether actor may hard-delete tickets.
func CanDelete(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// Can evaluates a capability against the matrix. View/edit are scoped to a
// ticket; assign/delete are role-wide.
func Can(actor *domain.User, action Action, ticket *domain.Ticket) bool {
	switch action {
	case ActionView:
		return CanView(actor, ticket)
	case ActionEdit:
		return CanEdit(actor, ticket)
	case ActionAssign:
		return CanAssign(actor)
	case ActionDelete:
		return CanDelete(actor)
	}
	return false
}
