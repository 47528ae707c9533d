package repository

import (
	"context"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalFilter narrows an approval listing; zero value lists all approvals.
// A non-nil ClientIDs is loaded in chunks, so rows come back ordered per client.
type ApprovalFilter struct {
	ClientID  *uuid.UUID
	ClientIDs []uuid.UUID
}

type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Approval, error)
	List(ctx context.Context, filter ApprovalFilter) ([]model.Approval, error)
	Update(ctx context.Context, approval *model.Approval) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	if err := GetDB(ctx, r.db).First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) List(ctx context.Context, filter ApprovalFilter) ([]model.Approval, error) {
	scope := func(query *gorm.DB) *gorm.DB {
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		return query.Order("updated_at asc")
	}
	if filter.ClientIDs != nil {
		return findIn[model.Approval](ctx, r.db, "client_id", filter.ClientIDs, scope)
	}
	approvals := []model.Approval{}
	if err := GetDB(ctx, r.db).Scopes(scope).Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *approvalRepository) Update(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}
