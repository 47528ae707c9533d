package dashboard

import (
	"context"
	"fmt"
	"time"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/observability"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"

	"golang.org/x/sync/errgroup"
)

type Service interface {
	Metrics(ctx context.Context, caller access.Caller) (model.DashboardMetrics, error)
	Overview(ctx context.Context, caller access.Caller) (model.ReportOverview, error)
}

type service struct {
	clients   repository.ClientRepository
	tasks     repository.TaskRepository
	approvals repository.ApprovalRepository
	inventory repository.InventoryRepository
	invoices  repository.InvoiceRepository
	resolver  *resolver.Resolver
	now       func() time.Time
}

func NewService(
	clients repository.ClientRepository,
	tasks repository.TaskRepository,
	approvals repository.ApprovalRepository,
	inventory repository.InventoryRepository,
	invoices repository.InvoiceRepository,
	res *resolver.Resolver,
	now func() time.Time,
) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		clients:   clients,
		tasks:     tasks,
		approvals: approvals,
		inventory: inventory,
		invoices:  invoices,
		resolver:  res,
		now:       now,
	}
}

// Metrics recomputes the dashboard from current state on every call.
func (s *service) Metrics(ctx context.Context, caller access.Caller) (model.DashboardMetrics, error) {
	start := time.Now()
	defer func() { observability.DashboardComputeDuration.Observe(time.Since(start).Seconds()) }()

	in, err := s.load(ctx, caller)
	if err != nil {
		return model.DashboardMetrics{}, err
	}
	return Compute(in, s.now()), nil
}

func (s *service) Overview(ctx context.Context, caller access.Caller) (model.ReportOverview, error) {
	in, err := s.load(ctx, caller)
	if err != nil {
		return model.ReportOverview{}, err
	}
	return ComputeOverview(in, s.now()), nil
}

// load fetches the five collections concurrently
func (s *service) load(ctx context.Context, caller access.Caller) (Input, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return Input{}, err
	}

	var in Input
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.clients.List(gCtx, repository.ClientFilter{AgentID: scope.AgentFilter()})
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		in.Clients, err = s.resolver.Clients(gCtx, rows)
		return err
	})
	g.Go(func() error {
		rows, err := s.tasks.List(gCtx, repository.TaskFilter{AgentID: scope.AgentFilter()})
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		in.Tasks, err = s.resolver.Tasks(gCtx, rows)
		return err
	})
	g.Go(func() error {
		rows, err := s.approvals.List(gCtx, repository.ApprovalFilter{})
		if err != nil {
			return fmt.Errorf("list approvals: %w", err)
		}
		in.Approvals = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.inventory.List(gCtx)
		if err != nil {
			return fmt.Errorf("list inventory: %w", err)
		}
		in.Inventory = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.invoices.List(gCtx, repository.InvoiceFilter{})
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		in.Invoices, err = s.resolver.Invoices(gCtx, rows)
		return err
	})

	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}
