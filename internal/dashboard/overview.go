package dashboard

import (
	"time"

	"solarflow/internal/model"

	"github.com/google/uuid"
)

// ComputeOverview builds the reports page summary from the same input as Compute.
func ComputeOverview(in Input, now time.Time) model.ReportOverview {
	out := model.ReportOverview{
		Clients:          model.ClientStatusCounts{Total: len(in.Clients)},
		Tasks:            model.TaskStats{Total: len(in.Tasks)},
		ApprovalProgress: make([]model.ClientProgress, 0, len(in.Clients)),
		StepBreakdown:    make([]model.StepBreakdown, 0, len(model.ApprovalSteps)),
	}

	for _, c := range in.Clients {
		switch c.ProjectStatus {
		case model.ProjectStatusLead:
			out.Clients.Lead++
		case model.ProjectStatusInProgress:
			out.Clients.InProgress++
		case model.ProjectStatusCompleted:
			out.Clients.Completed++
		}
	}

	for _, t := range in.Tasks {
		switch t.Status {
		case model.TaskPending:
			out.Tasks.Pending++
			if t.DueDate != nil && now.After(*t.DueDate) {
				out.Tasks.Overdue++
			}
		case model.TaskCompleted:
			out.Tasks.Completed++
		case model.TaskOverdue:
			out.Tasks.Overdue++
		}
	}

	for _, item := range in.Inventory {
		if item.IsLowStock() {
			out.InventoryAlerts++
		}
		if item.IsCriticalStock() {
			out.CriticalStock++
		}
	}

	approvedSteps := make(map[uuid.UUID]map[string]bool)
	breakdown := make(map[string]*model.StepBreakdown, len(model.ApprovalSteps))
	for _, step := range model.ApprovalSteps {
		breakdown[step] = &model.StepBreakdown{Step: step}
	}
	for _, a := range in.Approvals {
		b, ok := breakdown[a.Step]
		if !ok {
			continue
		}
		switch a.Status {
		case model.ApprovalPending:
			b.Pending++
		case model.ApprovalApproved:
			b.Approved++
			if approvedSteps[a.ClientID] == nil {
				approvedSteps[a.ClientID] = make(map[string]bool)
			}
			approvedSteps[a.ClientID][a.Step] = true
		case model.ApprovalRejected:
			b.Rejected++
		}
	}
	for _, step := range model.ApprovalSteps {
		out.StepBreakdown = append(out.StepBreakdown, *breakdown[step])
	}

	for _, c := range in.Clients {
		n := len(approvedSteps[c.ID])
		out.ApprovalProgress = append(out.ApprovalProgress, model.ClientProgress{
			ClientID:      c.ID.String(),
			ClientName:    c.Name,
			ApprovedSteps: n,
			Percentage:    Percentage(n, len(model.ApprovalSteps)),
		})
	}
	return out
}
