// Package dashboard aggregates the dashboard and reports summaries.
package dashboard

import (
	"sort"
	"time"

	"solarflow/internal/model"

	"github.com/shopspring/decimal"
)

const (
	recentClientsLimit = 5
	pendingTasksLimit  = 10
)

var lakh = decimal.NewFromInt(100000)

// Input is everything one summary is computed from. Clients and tasks are
// already narrowed to the caller's scope; the other collections are global.
type Input struct {
	Clients   []model.ClientWithAgent
	Tasks     []model.TaskWithClient
	Approvals []model.Approval
	Inventory []model.InventoryItem
	Invoices  []model.InvoiceWithItems
}

// Compute derives the dashboard metrics. It is pure: same input and clock, same output.
func Compute(in Input, now time.Time) model.DashboardMetrics {
	m := model.DashboardMetrics{
		TotalClients:     len(in.Clients),
		MonthlyRevenue:   FormatLakhs(MonthlyRevenue(in.Invoices, now)),
		ApprovalPipeline: Pipeline(in.Approvals, len(in.Clients)),
		LowStockItems:    LowStock(in.Inventory),
		RecentClients:    RecentClients(in.Clients, recentClientsLimit),
		PendingTasks:     PendingTasks(in.Tasks, now, pendingTasksLimit),
	}
	for _, c := range in.Clients {
		if c.ProjectStatus == model.ProjectStatusInProgress {
			m.ActiveProjects++
		}
	}
	for _, a := range in.Approvals {
		if a.Status == model.ApprovalPending {
			m.PendingApprovals++
		}
	}
	return m
}

// MonthlyRevenue sums paid invoices whose creation month matches the month of
// now. Only the month index is compared, so the same month of earlier years counts.
func MonthlyRevenue(invoices []model.InvoiceWithItems, now time.Time) decimal.Decimal {
	month := now.Month()
	sum := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != model.InvoicePaid {
			continue
		}
		if inv.CreatedAt.In(now.Location()).Month() == month {
			sum = sum.Add(inv.TotalAmount)
		}
	}
	return sum
}

// FormatLakhs renders an amount in lakhs with one decimal, e.g. ₹1.5L
func FormatLakhs(amount decimal.Decimal) string {
	return "₹" + amount.Div(lakh).StringFixed(1) + "L"
}

// Pipeline counts approval rows per step regardless of status or client.
func Pipeline(approvals []model.Approval, totalClients int) []model.PipelineStep {
	counts := make(map[string]int, len(model.ApprovalSteps))
	for _, a := range approvals {
		counts[a.Step]++
	}
	out := make([]model.PipelineStep, 0, len(model.ApprovalSteps))
	for _, step := range model.ApprovalSteps {
		out = append(out, model.PipelineStep{
			Step:       step,
			Count:      counts[step],
			Percentage: Percentage(counts[step], totalClients),
		})
	}
	return out
}

// Percentage is round(100*part/whole), halves rounding up, and 0 when whole is 0.
// It is not clamped to 100.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

func LowStock(items []model.InventoryItem) []model.LowStockItem {
	out := []model.LowStockItem{}
	for _, item := range items {
		if item.IsLowStock() {
			out = append(out, model.LowStockItem{InventoryItem: item, IsLow: true, Level: item.StockLevel()})
		}
	}
	return out
}

func RecentClients(clients []model.ClientWithAgent, limit int) []model.ClientWithAgent {
	sorted := append([]model.ClientWithAgent(nil), clients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []model.ClientWithAgent{}
	}
	return sorted
}

// PendingTasks orders pending tasks by due date. Any pair involving a task
// without a due date compares equal, so those keep their fetch order.
func PendingTasks(tasks []model.TaskWithClient, now time.Time, limit int) []model.PendingTask {
	pending := make([]model.TaskWithClient, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == model.TaskPending {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i].DueDate, pending[j].DueDate
		return a != nil && b != nil && a.Before(*b)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	out := make([]model.PendingTask, 0, len(pending))
	for _, t := range pending {
		out = append(out, model.PendingTask{TaskWithClient: t, Due: DescribeDue(t.DueDate, now)})
	}
	return out
}
