package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	ClientID        string     `json:"clientId" binding:"required,uuid"`
	AssignedAgentID *string    `json:"assignedAgentId" binding:"omitempty,uuid"`
	Title           string     `json:"title" binding:"required,max=255"`
	Description     *string    `json:"description"`
	DueDate         *time.Time `json:"dueDate"`
	Status          string     `json:"status" binding:"omitempty,oneof=pending completed overdue"`
}

type UpdateTaskRequest struct {
	AssignedAgentID *string      `json:"assignedAgentId" binding:"omitempty,uuid"`
	Title           *string      `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string      `json:"description"`
	DueDate         NullableTime `json:"dueDate" swaggertype:"string" format:"date-time"`
	Status          *string      `json:"status" binding:"omitempty,oneof=pending completed overdue"`
}

type TaskService interface {
	List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.TaskWithClient, error)
	Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Task, error)
	Create(ctx context.Context, caller access.Caller, req CreateTaskRequest) (*model.Task, error)
	Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	clients   repository.ClientRepository
	users     repository.UserRepository
	resolver  *resolver.Resolver
	txManager repository.TransactionManager
	recorder
}

func NewTaskService(
	tasks repository.TaskRepository,
	clients repository.ClientRepository,
	users repository.UserRepository,
	res *resolver.Resolver,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) TaskService {
	return &taskService{
		tasks:     tasks,
		clients:   clients,
		users:     users,
		resolver:  res,
		txManager: txManager,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *taskService) List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.TaskWithClient, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, repository.TaskFilter{AgentID: scope.AgentFilter(), ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.resolver.Tasks(ctx, tasks)
}

func (s *taskService) Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Task, error) {
	return s.load(ctx, caller, id)
}

func (s *taskService) Create(ctx context.Context, caller access.Caller, req CreateTaskRequest) (*model.Task, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	clientID, err := parseRef("clientId", req.ClientID)
	if err != nil {
		return nil, err
	}
	agentID := caller.ID
	if ref, err := parseOptionalRef("assignedAgentId", req.AssignedAgentID); err != nil {
		return nil, err
	} else if ref != nil {
		agentID = *ref
	}

	status := req.Status
	if status == "" {
		status = model.TaskPending
	}
	if err := oneOf("status", status, model.TaskPending, model.TaskCompleted, model.TaskOverdue); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}

	task := &model.Task{
		ClientID:        clientID,
		AssignedAgentID: agentID,
		Title:           title,
		Description:     optionalText(req.Description),
		DueDate:         req.DueDate,
		Status:          status,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkRefs(txCtx, task); err != nil {
			return err
		}
		if err := s.tasks.Create(txCtx, task); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateTask, task.ID.String(), task.Title, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to create task")
	}

	s.committed("task", "created", task)
	return task, nil
}

func (s *taskService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error) {
	task, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.AssignedAgentID != nil {
		agentID, err := parseRef("assignedAgentId", *req.AssignedAgentID)
		if err != nil {
			return nil, err
		}
		task.AssignedAgentID = agentID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title", "is required")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = optionalText(req.Description)
	}
	if req.DueDate.Set {
		task.DueDate = req.DueDate.Value
	}
	if req.Status != nil {
		if err := oneOf("status", *req.Status, model.TaskPending, model.TaskCompleted, model.TaskOverdue); err != nil {
			return nil, err
		}
		task.Status = *req.Status
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkRefs(txCtx, task); err != nil {
			return err
		}
		if err := s.tasks.Update(txCtx, task); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionUpdateTask, task.ID.String(), task.Title, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to update task")
	}

	s.committed("task", "updated", task)
	return task, nil
}

func (s *taskService) load(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Task, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load task")
	}
	if !scope.AllowsTask(*task) {
		return nil, ErrNotFound
	}
	return task, nil
}

// checkRefs rejects tasks pointing at a client or agent that does not exist
func (s *taskService) checkRefs(ctx context.Context, task *model.Task) error {
	if _, err := s.clients.FindByID(ctx, task.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("clientId", "client not found")
		}
		return err
	}
	if _, err := s.users.FindByID(ctx, task.AssignedAgentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("assignedAgentId", "user not found")
		}
		return err
	}
	return nil
}
