package model

// DashboardMetrics is the summary card data shown on the dashboard
type DashboardMetrics struct {
	TotalClients     int               `json:"totalClients"`
	ActiveProjects   int               `json:"activeProjects"`
	PendingApprovals int               `json:"pendingApprovals"`
	MonthlyRevenue   string            `json:"monthlyRevenue"`
	ApprovalPipeline []PipelineStep    `json:"approvalPipeline"`
	LowStockItems    []LowStockItem    `json:"lowStockItems"`
	RecentClients    []ClientWithAgent `json:"recentClients"`
	PendingTasks     []PendingTask     `json:"pendingTasks"`
}

// PipelineStep counts approval rows carrying one step tag
type PipelineStep struct {
	Step       string `json:"step"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type LowStockItem struct {
	InventoryItem
	IsLow bool   `json:"isLow"`
	Level string `json:"level"`
}

// Due date urgency labels
const (
	UrgencyOverdue = "overdue"
	UrgencyUrgent  = "urgent"
	UrgencySoon    = "soon"
	UrgencyNormal  = "normal"
	UrgencyNone    = "none"
)

// DueStatus is a human readable description of a task's due date relative to now
type DueStatus struct {
	Overdue bool   `json:"overdue"`
	Urgency string `json:"urgency"`
	Text    string `json:"text"`
}

type PendingTask struct {
	TaskWithClient
	Due DueStatus `json:"due"`
}

// ReportOverview backs the reports page
type ReportOverview struct {
	Clients          ClientStatusCounts `json:"clients"`
	Tasks            TaskStats          `json:"tasks"`
	InventoryAlerts  int                `json:"inventoryAlerts"`
	CriticalStock    int                `json:"criticalStock"`
	ApprovalProgress []ClientProgress   `json:"approvalProgress"`
	StepBreakdown    []StepBreakdown    `json:"stepBreakdown"`
}

type ClientStatusCounts struct {
	Total      int `json:"total"`
	Lead       int `json:"lead"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// ClientProgress is the share of the five approval steps a client has cleared
type ClientProgress struct {
	ClientID      string `json:"clientId"`
	ClientName    string `json:"clientName"`
	ApprovedSteps int    `json:"approvedSteps"`
	Percentage    int    `json:"percentage"`
}

type StepBreakdown struct {
	Step     string `json:"step"`
	Pending  int    `json:"pending"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}
