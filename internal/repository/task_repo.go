package repository

import (
	"context"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter narrows a task listing; zero value lists all tasks.
// A non-nil ClientIDs is loaded in chunks, so rows come back ordered per client.
type TaskFilter struct {
	AgentID   *uuid.UUID
	ClientID  *uuid.UUID
	ClientIDs []uuid.UUID
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	scope := func(query *gorm.DB) *gorm.DB {
		if filter.AgentID != nil {
			query = query.Where("assigned_agent_id = ?", *filter.AgentID)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		return query.Order("created_at asc")
	}
	if filter.ClientIDs != nil {
		return findIn[model.Task](ctx, r.db, "client_id", filter.ClientIDs, scope)
	}
	tasks := []model.Task{}
	if err := GetDB(ctx, r.db).Scopes(scope).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}
