package repository

import (
	"context"
	"errors"
	"time"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned by Deduct when the row holds fewer units than requested
var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.InventoryItem, error)
	List(ctx context.Context) ([]model.InventoryItem, error)
	Deduct(ctx context.Context, id uuid.UUID, quantity int) error
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.InventoryItem, error) {
	return findIn[model.InventoryItem](ctx, r.db, "id", ids, nil)
}

func (r *inventoryRepository) List(ctx context.Context) ([]model.InventoryItem, error) {
	items := []model.InventoryItem{}
	if err := GetDB(ctx, r.db).Order("item_name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Deduct removes quantity units from the item in a single conditional UPDATE.
// Stock never goes below zero; a short row yields ErrInsufficientStock.
func (r *inventoryRepository) Deduct(ctx context.Context, id uuid.UUID, quantity int) error {
	res := GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}
