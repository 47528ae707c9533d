// Package resolver attaches related rows to base entities. Rows whose required
// references are missing are left out and reported as drops, never as errors.
package resolver

import (
	"solarflow/internal/model"

	"github.com/google/uuid"
)

// Drop reasons
const (
	ReasonClientMissing    = "client_missing"
	ReasonAgentMissing     = "agent_missing"
	ReasonItemMissing      = "item_missing"
	ReasonInventoryMissing = "inventory_missing"
)

// Entity labels used in drops
const (
	EntityTask         = "task"
	EntityStockRequest = "stock_request"
	EntityInvoice      = "invoice"
	EntityInvoiceItem  = "invoice_item"
)

// Drop describes one row left out of a resolved result
type Drop struct {
	Entity string
	ID     uuid.UUID
	Reason string
}

// ResolveClients attaches the optional agent plus approval and task lists.
// Clients have no required references, so nothing is dropped.
func ResolveClients(clients []model.Client, users []model.User, approvals []model.Approval, tasks []model.Task) []model.ClientWithAgent {
	usersByID := index(users, func(u model.User) uuid.UUID { return u.ID })
	approvalsByClient := group(approvals, func(a model.Approval) uuid.UUID { return a.ClientID })
	tasksByClient := group(tasks, func(t model.Task) uuid.UUID { return t.ClientID })

	out := make([]model.ClientWithAgent, 0, len(clients))
	for _, c := range clients {
		resolved := model.ClientWithAgent{
			Client:    c,
			Approvals: nonNil(approvalsByClient[c.ID]),
			Tasks:     nonNil(tasksByClient[c.ID]),
		}
		if c.AssignedAgentID != nil {
			if u, ok := usersByID[*c.AssignedAgentID]; ok {
				resolved.AssignedAgent = &u
			}
		}
		out = append(out, resolved)
	}
	return out
}

// ResolveTasks requires both the client and the assigned agent.
func ResolveTasks(tasks []model.Task, clients []model.Client, users []model.User) ([]model.TaskWithClient, []Drop) {
	clientsByID := index(clients, func(c model.Client) uuid.UUID { return c.ID })
	usersByID := index(users, func(u model.User) uuid.UUID { return u.ID })

	out := make([]model.TaskWithClient, 0, len(tasks))
	var drops []Drop
	for _, t := range tasks {
		client, ok := clientsByID[t.ClientID]
		if !ok {
			drops = append(drops, Drop{Entity: EntityTask, ID: t.ID, Reason: ReasonClientMissing})
			continue
		}
		agent, ok := usersByID[t.AssignedAgentID]
		if !ok {
			drops = append(drops, Drop{Entity: EntityTask, ID: t.ID, Reason: ReasonAgentMissing})
			continue
		}
		out = append(out, model.TaskWithClient{Task: t, Client: client, AssignedAgent: agent})
	}
	return out, drops
}

// ResolveStockRequests requires the requesting agent and the inventory item;
// the approver is optional.
func ResolveStockRequests(requests []model.StockRequest, users []model.User, items []model.InventoryItem) ([]model.StockRequestWithDetails, []Drop) {
	usersByID := index(users, func(u model.User) uuid.UUID { return u.ID })
	itemsByID := index(items, func(i model.InventoryItem) uuid.UUID { return i.ID })

	out := make([]model.StockRequestWithDetails, 0, len(requests))
	var drops []Drop
	for _, r := range requests {
		agent, ok := usersByID[r.AgentID]
		if !ok {
			drops = append(drops, Drop{Entity: EntityStockRequest, ID: r.ID, Reason: ReasonAgentMissing})
			continue
		}
		item, ok := itemsByID[r.ItemID]
		if !ok {
			drops = append(drops, Drop{Entity: EntityStockRequest, ID: r.ID, Reason: ReasonItemMissing})
			continue
		}
		resolved := model.StockRequestWithDetails{StockRequest: r, Agent: agent, Item: item}
		if r.ApprovedBy != nil {
			if approver, ok := usersByID[*r.ApprovedBy]; ok {
				resolved.ApprovedByUser = &approver
			}
		}
		out = append(out, resolved)
	}
	return out, drops
}

// ResolveInvoices requires the client. Line items whose inventory row is gone are
// dropped from the invoice's item list; the invoice itself stays.
func ResolveInvoices(invoices []model.Invoice, clients []model.Client, lines []model.InvoiceItem, inventory []model.InventoryItem) ([]model.InvoiceWithItems, []Drop) {
	clientsByID := index(clients, func(c model.Client) uuid.UUID { return c.ID })
	inventoryByID := index(inventory, func(i model.InventoryItem) uuid.UUID { return i.ID })
	linesByInvoice := group(lines, func(l model.InvoiceItem) uuid.UUID { return l.InvoiceID })

	out := make([]model.InvoiceWithItems, 0, len(invoices))
	var drops []Drop
	for _, inv := range invoices {
		client, ok := clientsByID[inv.ClientID]
		if !ok {
			drops = append(drops, Drop{Entity: EntityInvoice, ID: inv.ID, Reason: ReasonClientMissing})
			continue
		}
		items := make([]model.InvoiceItemWithInventory, 0, len(linesByInvoice[inv.ID]))
		for _, line := range linesByInvoice[inv.ID] {
			stock, ok := inventoryByID[line.ItemID]
			if !ok {
				drops = append(drops, Drop{Entity: EntityInvoiceItem, ID: line.ID, Reason: ReasonInventoryMissing})
				continue
			}
			items = append(items, model.InvoiceItemWithInventory{InvoiceItem: line, Item: stock})
		}
		out = append(out, model.InvoiceWithItems{Invoice: inv, Client: client, Items: items})
	}
	return out, drops
}

func index[T any](rows []T, key func(T) uuid.UUID) map[uuid.UUID]T {
	m := make(map[uuid.UUID]T, len(rows))
	for _, r := range rows {
		m[key(r)] = r
	}
	return m
}

func group[T any](rows []T, key func(T) uuid.UUID) map[uuid.UUID][]T {
	m := make(map[uuid.UUID][]T)
	for _, r := range rows {
		k := key(r)
		m[k] = append(m[k], r)
	}
	return m
}

// uniqueIDs collects distinct keys in first-seen order, skipping uuid.Nil
func uniqueIDs[T any](rows []T, key func(T) uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		id := key(r)
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
