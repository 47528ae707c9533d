package model

// Resolved views: a base row with its related entities attached.
// Required references are values; optional ones are pointers.

type ClientWithAgent struct {
	Client
	AssignedAgent *User      `json:"assignedAgent,omitempty"`
	Approvals     []Approval `json:"approvals"`
	Tasks         []Task     `json:"tasks"`
}

type TaskWithClient struct {
	Task
	Client        Client `json:"client"`
	AssignedAgent User   `json:"assignedAgent"`
}

type StockRequestWithDetails struct {
	StockRequest
	Agent          User          `json:"agent"`
	Item           InventoryItem `json:"item"`
	ApprovedByUser *User         `json:"approvedByUser,omitempty"`
}

type InvoiceItemWithInventory struct {
	InvoiceItem
	Item InventoryItem `json:"item"`
}

type InvoiceWithItems struct {
	Invoice
	Client Client                     `json:"client"`
	Items  []InvoiceItemWithInventory `json:"items"`
}
