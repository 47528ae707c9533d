package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type CreateClientRequest struct {
	Name            string  `json:"name" binding:"required,max=255"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           string  `json:"phone" binding:"required,max=50"`
	Address         string  `json:"address" binding:"required"`
	AssignedAgentID *string `json:"assignedAgentId" binding:"omitempty,uuid"`
	ProjectStatus   string  `json:"projectStatus" binding:"omitempty,oneof=lead in-progress completed"`
}

type UpdateClientRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           *string `json:"phone" binding:"omitempty,min=1,max=50"`
	Address         *string `json:"address" binding:"omitempty,min=1"`
	AssignedAgentID *string `json:"assignedAgentId" binding:"omitempty,uuid"`
	ProjectStatus   *string `json:"projectStatus" binding:"omitempty,oneof=lead in-progress completed"`
}

type ClientService interface {
	List(ctx context.Context, caller access.Caller) ([]model.ClientWithAgent, error)
	Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.ClientWithAgent, error)
	Create(ctx context.Context, caller access.Caller, req CreateClientRequest) (*model.Client, error)
	Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateClientRequest) (*model.Client, error)
}

type clientService struct {
	clients   repository.ClientRepository
	users     repository.UserRepository
	resolver  *resolver.Resolver
	txManager repository.TransactionManager
	recorder
}

func NewClientService(
	clients repository.ClientRepository,
	users repository.UserRepository,
	res *resolver.Resolver,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) ClientService {
	return &clientService{
		clients:   clients,
		users:     users,
		resolver:  res,
		txManager: txManager,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *clientService) List(ctx context.Context, caller access.Caller) ([]model.ClientWithAgent, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}

	clients, err := s.clients.List(ctx, repository.ClientFilter{AgentID: scope.AgentFilter()})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return s.resolver.Clients(ctx, clients)
}

func (s *clientService) Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.ClientWithAgent, error) {
	client, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Clients(ctx, []model.Client{*client})
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, ErrNotFound
	}
	return &resolved[0], nil
}

func (s *clientService) Create(ctx context.Context, caller access.Caller, req CreateClientRequest) (*model.Client, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	agentID, err := parseOptionalRef("assignedAgentId", req.AssignedAgentID)
	if err != nil {
		return nil, err
	}
	if agentID == nil && !caller.IsAdmin() {
		id := caller.ID
		agentID = &id
	}

	status := req.ProjectStatus
	if status == "" {
		status = model.ProjectStatusLead
	}
	if err := oneOf("projectStatus", status, model.ProjectStatusLead, model.ProjectStatusInProgress, model.ProjectStatusCompleted); err != nil {
		return nil, err
	}

	client := &model.Client{
		Name:            strings.TrimSpace(req.Name),
		Email:           optionalText(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Address:         strings.TrimSpace(req.Address),
		AssignedAgentID: agentID,
		ProjectStatus:   status,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkAgent(txCtx, client.AssignedAgentID); err != nil {
			return err
		}
		if err := s.clients.Create(txCtx, client); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateClient, client.ID.String(), client.Name, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to create client")
	}

	s.committed("client", "created", client)
	return client, nil
}

func (s *clientService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateClientRequest) (*model.Client, error) {
	client, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = optionalText(req.Email)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.AssignedAgentID != nil {
		agentID, err := parseOptionalRef("assignedAgentId", req.AssignedAgentID)
		if err != nil {
			return nil, err
		}
		client.AssignedAgentID = agentID
	}
	if req.ProjectStatus != nil {
		if err := oneOf("projectStatus", *req.ProjectStatus, model.ProjectStatusLead, model.ProjectStatusInProgress, model.ProjectStatusCompleted); err != nil {
			return nil, err
		}
		client.ProjectStatus = *req.ProjectStatus
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkAgent(txCtx, client.AssignedAgentID); err != nil {
			return err
		}
		if err := s.clients.Update(txCtx, client); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionUpdateClient, client.ID.String(), client.Name, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to update client")
	}

	s.committed("client", "updated", client)
	return client, nil
}

// load fetches a client the caller may see; anything else is ErrNotFound
func (s *clientService) load(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Client, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load client")
	}
	if !scope.AllowsClient(*client) {
		return nil, ErrNotFound
	}
	return client, nil
}

func (s *clientService) checkAgent(ctx context.Context, agentID *uuid.UUID) error {
	if agentID == nil {
		return nil
	}
	if _, err := s.users.FindByID(ctx, *agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("assignedAgentId", "user not found")
		}
		return err
	}
	return nil
}
