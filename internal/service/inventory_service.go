package service

import (
	"context"
	"fmt"
	"strings"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultThreshold applies when an item is created without a reorder threshold
const DefaultThreshold = 10

// DTOs
type CreateInventoryRequest struct {
	ItemName    string  `json:"itemName" binding:"required,max=255"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity" binding:"omitempty,gte=0"`
	Threshold   *int    `json:"threshold" binding:"omitempty,gte=0"`
	UnitPrice   *string `json:"unitPrice" binding:"omitempty,decimal"`
}

type UpdateInventoryRequest struct {
	ItemName    *string `json:"itemName" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity" binding:"omitempty,gte=0"`
	Threshold   *int    `json:"threshold" binding:"omitempty,gte=0"`
	UnitPrice   *string `json:"unitPrice" binding:"omitempty,decimal"`
}

type InventoryService interface {
	List(ctx context.Context, caller access.Caller) ([]model.InventoryItem, error)
	Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.InventoryItem, error)
	Create(ctx context.Context, caller access.Caller, req CreateInventoryRequest) (*model.InventoryItem, error)
	Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateInventoryRequest) (*model.InventoryItem, error)
}

type inventoryService struct {
	items     repository.InventoryRepository
	txManager repository.TransactionManager
	recorder
}

func NewInventoryService(
	items repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) InventoryService {
	return &inventoryService{
		items:     items,
		txManager: txManager,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *inventoryService) List(ctx context.Context, caller access.Caller) ([]model.InventoryItem, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (s *inventoryService) Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.InventoryItem, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load inventory item")
	}
	return item, nil
}

func (s *inventoryService) Create(ctx context.Context, caller access.Caller, req CreateInventoryRequest) (*model.InventoryItem, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	item := model.InventoryItem{
		ItemName:    strings.TrimSpace(req.ItemName),
		Description: optionalText(req.Description),
		Threshold:   DefaultThreshold,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Threshold != nil {
		item.Threshold = *req.Threshold
	}
	if err := applyUnitPrice(&item, req.UnitPrice); err != nil {
		return nil, err
	}
	if err := checkCounts(item); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.items.Create(txCtx, &item); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateInventory, item.ID.String(), item.ItemName, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to create inventory item")
	}

	s.committed("inventory", "created", item)
	return &item, nil
}

func (s *inventoryService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateInventoryRequest) (*model.InventoryItem, error) {
	item, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.ItemName != nil {
		item.ItemName = strings.TrimSpace(*req.ItemName)
	}
	if req.Description != nil {
		item.Description = optionalText(req.Description)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Threshold != nil {
		item.Threshold = *req.Threshold
	}
	if req.UnitPrice != nil {
		if err := applyUnitPrice(item, req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if err := checkCounts(*item); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.items.Update(txCtx, item); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionUpdateInventory, item.ID.String(), item.ItemName, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to update inventory item")
	}

	s.committed("inventory", "updated", item)
	return item, nil
}

// applyUnitPrice sets or clears the optional unit price; a blank string clears it
func applyUnitPrice(item *model.InventoryItem, raw *string) error {
	if raw == nil {
		return nil
	}
	if strings.TrimSpace(*raw) == "" {
		item.UnitPrice = decimal.NullDecimal{}
		return nil
	}
	price, err := parseMoney("unitPrice", *raw)
	if err != nil {
		return err
	}
	item.UnitPrice = decimal.NewNullDecimal(price)
	return nil
}

func checkCounts(item model.InventoryItem) error {
	switch {
	case item.ItemName == "":
		return invalid("itemName", "is required")
	case item.Quantity < 0:
		return invalid("quantity", "must not be negative")
	case item.Threshold < 0:
		return invalid("threshold", "must not be negative")
	}
	return nil
}
