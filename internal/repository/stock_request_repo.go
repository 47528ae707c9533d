package repository

import (
	"context"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRequestFilter narrows a listing; a nil AgentID lists every request.
type StockRequestFilter struct {
	AgentID *uuid.UUID
	Status  string
}

type StockRequestRepository interface {
	Create(ctx context.Context, req *model.StockRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockRequest, error)
	List(ctx context.Context, filter StockRequestFilter) ([]model.StockRequest, error)
	Update(ctx context.Context, req *model.StockRequest) error
}

type stockRequestRepository struct {
	db *gorm.DB
}

func NewStockRequestRepository(db *gorm.DB) StockRequestRepository {
	return &stockRequestRepository{db: db}
}

func (r *stockRequestRepository) Create(ctx context.Context, req *model.StockRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *stockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StockRequest, error) {
	var req model.StockRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *stockRequestRepository) List(ctx context.Context, filter StockRequestFilter) ([]model.StockRequest, error) {
	requests := []model.StockRequest{}
	query := GetDB(ctx, r.db)
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Order("created_at asc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *stockRequestRepository) Update(ctx context.Context, req *model.StockRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
