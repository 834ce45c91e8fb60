package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssignmentsHandler manages assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// Assign POST /tickets/:id/assign.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError(apperrors.CodeMissingAssignee, "assignee_id required", nil)
	}

	ticket, err := h.service.AssignTicket(c.Context(), actor, c.Params("id"), req.AssigneeID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Unassign POST /tickets/:id/unassign.
func (h *AssignmentsHandler) Unassign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UnassignRequest
	_ = c.BodyParser(&req)

	ticket, err := h.service.UnassignTicket(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reassign POST /tickets/:id/reassign.
func (h *AssignmentsHandler) Reassign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError(apperrors.CodeMissingAssignee, "assignee_id required", nil)
	}

	ticket, err := h.service.ReassignTicket(c.Context(), actor, c.Params("id"), req.AssigneeID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AutoAssign POST /tickets/:id/auto-assign.
func (h *AssignmentsHandler) AutoAssign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.AutoAssignTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// BulkAssign POST /tickets/bulk-assign.
func (h *AssignmentsHandler) BulkAssign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid payload", nil)
	}

	result, err := h.service.BulkAssignTickets(c.Context(), actor, req.TicketIDs, req.AssigneeID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Recommendations GET /tickets/:id/assignment-recommendations.
func (h *AssignmentsHandler) Recommendations(c *fiber.Ctx) error {
	recommendations, err := h.service.GetAssignmentRecommendations(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.RecommendationResponse, 0, len(recommendations))
	for _, rec := range recommendations {
		items = append(items, dto.RecommendationResponse{UserID: rec.UserID, Score: rec.Score})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Workloads GET /assignees/workloads.
func (h *AssignmentsHandler) Workloads(c *fiber.Ctx) error {
	workloads, err := h.service.ComputeAssigneeWorkloads(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.WorkloadResponse, 0, len(workloads))
	for _, entry := range workloads {
		items = append(items, dto.WorkloadResponse{
			UserID:          entry.User.ID,
			Email:           entry.User.Email,
			FirstName:       entry.User.FirstName,
			LastName:        entry.User.LastName,
			OpenCount:       entry.Workload.OpenCount,
			InProgressCount: entry.Workload.InProgressCount,
			Total:           entry.Workload.Total(),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /tickets/:id/assignment-events.
func (h *AssignmentsHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := parseInt(c.Query("limit"), 50)
	offset := (parseInt(c.Query("page"), 1) - 1) * limit

	entries, err := h.service.ListAssignmentEvents(c.Context(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentEventResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AssignmentEventResponse{
			ID:           entry.ID,
			Kind:         entry.Kind,
			FromAssignee: entry.FromAssignee,
			ToAssignee:   entry.ToAssignee,
			ActorID:      entry.ActorID,
			Reason:       entry.Reason,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
