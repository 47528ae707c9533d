package repository

import (
	"context"

	"solarflow/internal/model"

	"gorm.io/gorm"
)

// AuditFilter narrows the mutation history; zero value lists every entry.
type AuditFilter struct {
	Action   string
	EntityID string
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Log writes one entry, inside the caller's transaction when there is one.
func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// List returns one page of entries, newest first, with the acting user loaded,
// plus the number of entries matching filter.
func (r *auditRepository) List(ctx context.Context, filter AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	matching := func(query *gorm.DB) *gorm.DB {
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		return query
	}

	var total int64
	if err := GetDB(ctx, r.db).Model(&model.AuditLog{}).Scopes(matching).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []model.AuditLog{}
	err := GetDB(ctx, r.db).Scopes(matching).
		Preload("User").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
