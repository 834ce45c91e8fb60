package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssignmentEventRepository persists the assignee-change audit trail.
type AssignmentEventRepository interface {
	Create(ctx context.Context, event *domain.AssignmentEvent) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.AssignmentEvent, error)
}

type assignmentEventRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentEventRepository instantiates the repository.
func NewAssignmentEventRepository(pool *pgxpool.Pool) AssignmentEventRepository {
	return &assignmentEventRepository{pool: pool}
}

func (r *assignmentEventRepository) Create(ctx context.Context, event *domain.AssignmentEvent) error {
	const query = `
        INSERT INTO assignment_events (ticket_id, kind, from_assignee, to_assignee, actor_id, reason)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.Kind,
		event.FromAssignee,
		event.ToAssignee,
		event.ActorID,
		event.Reason,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *assignmentEventRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.AssignmentEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, kind, from_assignee, to_assignee, actor_id, reason, created_at
        FROM assignment_events
        WHERE ticket_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentEvent
	for rows.Next() {
		var event domain.AssignmentEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.Kind,
			&event.FromAssignee,
			&event.ToAssignee,
			&event.ActorID,
			&event.Reason,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
