package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"solarflow/internal/model"
	"solarflow/internal/observability"
	"solarflow/internal/repository"

	"github.com/google/uuid"
)

// Resolver batch-loads the references of a page of rows and resolves them.
// Every drop is logged and counted.
type Resolver struct {
	users     repository.UserRepository
	clients   repository.ClientRepository
	approvals repository.ApprovalRepository
	tasks     repository.TaskRepository
	inventory repository.InventoryRepository
	invoices  repository.InvoiceRepository
	logger    *slog.Logger
}

func New(
	users repository.UserRepository,
	clients repository.ClientRepository,
	approvals repository.ApprovalRepository,
	tasks repository.TaskRepository,
	inventory repository.InventoryRepository,
	invoices repository.InvoiceRepository,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		users:     users,
		clients:   clients,
		approvals: approvals,
		tasks:     tasks,
		inventory: inventory,
		invoices:  invoices,
		logger:    logger,
	}
}

func (r *Resolver) Clients(ctx context.Context, clients []model.Client) ([]model.ClientWithAgent, error) {
	if len(clients) == 0 {
		return []model.ClientWithAgent{}, nil
	}
	agentIDs := uniqueIDs(clients, func(c model.Client) uuid.UUID {
		if c.AssignedAgentID == nil {
			return uuid.Nil
		}
		return *c.AssignedAgentID
	})
	clientIDs := uniqueIDs(clients, func(c model.Client) uuid.UUID { return c.ID })

	users, err := r.users.FindByIDs(ctx, agentIDs)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	approvals, err := r.approvals.List(ctx, repository.ApprovalFilter{ClientIDs: clientIDs})
	if err != nil {
		return nil, fmt.Errorf("load approvals: %w", err)
	}
	tasks, err := r.tasks.List(ctx, repository.TaskFilter{ClientIDs: clientIDs})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return ResolveClients(clients, users, approvals, tasks), nil
}

func (r *Resolver) Tasks(ctx context.Context, tasks []model.Task) ([]model.TaskWithClient, error) {
	if len(tasks) == 0 {
		return []model.TaskWithClient{}, nil
	}
	clients, err := r.clients.FindByIDs(ctx, uniqueIDs(tasks, func(t model.Task) uuid.UUID { return t.ClientID }))
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	users, err := r.users.FindByIDs(ctx, uniqueIDs(tasks, func(t model.Task) uuid.UUID { return t.AssignedAgentID }))
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	out, drops := ResolveTasks(tasks, clients, users)
	r.report(ctx, drops)
	return out, nil
}

func (r *Resolver) StockRequests(ctx context.Context, requests []model.StockRequest) ([]model.StockRequestWithDetails, error) {
	if len(requests) == 0 {
		return []model.StockRequestWithDetails{}, nil
	}
	userIDs := uniqueIDs(requests, func(s model.StockRequest) uuid.UUID { return s.AgentID })
	for _, s := range requests {
		if s.ApprovedBy != nil {
			userIDs = append(userIDs, *s.ApprovedBy)
		}
	}
	users, err := r.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	items, err := r.inventory.FindByIDs(ctx, uniqueIDs(requests, func(s model.StockRequest) uuid.UUID { return s.ItemID }))
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	out, drops := ResolveStockRequests(requests, users, items)
	r.report(ctx, drops)
	return out, nil
}

func (r *Resolver) Invoices(ctx context.Context, invoices []model.Invoice) ([]model.InvoiceWithItems, error) {
	if len(invoices) == 0 {
		return []model.InvoiceWithItems{}, nil
	}
	clients, err := r.clients.FindByIDs(ctx, uniqueIDs(invoices, func(i model.Invoice) uuid.UUID { return i.ClientID }))
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	lines, err := r.invoices.ListItems(ctx, uniqueIDs(invoices, func(i model.Invoice) uuid.UUID { return i.ID }))
	if err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	stock, err := r.inventory.FindByIDs(ctx, uniqueIDs(lines, func(l model.InvoiceItem) uuid.UUID { return l.ItemID }))
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	out, drops := ResolveInvoices(invoices, clients, lines, stock)
	r.report(ctx, drops)
	return out, nil
}

func (r *Resolver) report(ctx context.Context, drops []Drop) {
	for _, d := range drops {
		r.logger.WarnContext(ctx, "dropped row with missing reference",
			"entity", d.Entity, "id", d.ID.String(), "reason", d.Reason)
		observability.ResolverDroppedRows.WithLabelValues(d.Entity, d.Reason).Inc()
	}
}
