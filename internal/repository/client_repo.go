package repository

import (
	"context"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientFilter narrows a client listing. A nil AgentID lists every client.
type ClientFilter struct {
	AgentID *uuid.UUID
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]model.Client, error)
	Update(ctx context.Context, client *model.Client) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Client, error) {
	return findIn[model.Client](ctx, r.db, "id", ids, nil)
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]model.Client, error) {
	clients := []model.Client{}
	query := GetDB(ctx, r.db)
	if filter.AgentID != nil {
		query = query.Where("assigned_agent_id = ?", *filter.AgentID)
	}
	if err := query.Order("created_at asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}
