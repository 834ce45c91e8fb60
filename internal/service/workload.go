package service

import (
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// AssignmentRecommendation is one ranked auto-assignment candidate.
type AssignmentRecommendation struct {
	UserID string
	Score  int
}

// ComputeWorkloads folds grouped ticket counts into per-assignee workloads.
// It is a pure function over the snapshot its caller fetched: assignees with
// no open tickets still appear with zero counts, and counts for users absent
// from the assignee list (deactivated, demoted) are dropped.
func ComputeWorkloads(assignees []domain.User, counts []repository.AssigneeStatusCount) map[string]domain.Workload {
	workloads := make(map[string]domain.Workload, len(assignees))
	for _, user := range assignees {
		workloads[user.ID] = domain.Workload{UserID: user.ID}
	}
	for _, row := range counts {
		load, ok := workloads[row.AssigneeID]
		if !ok {
			continue
		}
		switch row.Status {
		case domain.TicketStatusOpen:
			load.OpenCount += row.Count
		case domain.TicketStatusInProgress:
			load.InProgressCount += row.Count
		}
		workloads[row.AssigneeID] = load
	}
	return workloads
}

// RankAssignees orders candidates by ascending load, breaking ties by
// earliest account creation so the result is deterministic. Greedy
// best-effort fairness, not an optimal schedule.
func RankAssignees(assignees []domain.User, workloads map[string]domain.Workload) []AssignmentRecommendation {
	ranked := make([]domain.User, len(assignees))
	copy(ranked, assignees)
	sort.SliceStable(ranked, func(i, j int) bool {
		li := workloads[ranked[i].ID].Total()
		lj := workloads[ranked[j].ID].Total()
		if li != lj {
			return li < lj
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	result := make([]AssignmentRecommendation, 0, len(ranked))
	for _, user := range ranked {
		result = append(result, AssignmentRecommendation{
			UserID: user.ID,
			Score:  workloads[user.ID].Total(),
		})
	}
	return result
}

// PickAssignee returns the least-loaded eligible candidate, or false when
// the candidate list is empty.
func PickAssignee(assignees []domain.User, workloads map[string]domain.Workload) (*domain.User, bool) {
	if len(assignees) == 0 {
		return nil, false
	}
	ranked := RankAssignees(assignees, workloads)
	for i := range assignees {
		if assignees[i].ID == ranked[0].UserID {
			return &assignees[i], true
		}
	}
	return nil, false
}
