package service

import (
	"context"
	"errors"
	"fmt"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateStockRequestRequest struct {
	AgentID           *string `json:"agentId" binding:"omitempty,uuid"`
	ItemID            string  `json:"itemId" binding:"required,uuid"`
	QuantityRequested int     `json:"quantityRequested" binding:"required,gt=0"`
	Reason            *string `json:"reason"`
}

type UpdateStockRequestRequest struct {
	QuantityRequested *int    `json:"quantityRequested" binding:"omitempty,gt=0"`
	Status            *string `json:"status" binding:"omitempty,oneof=pending approved denied"`
	Reason            *string `json:"reason"`
}

type StockRequestService interface {
	List(ctx context.Context, caller access.Caller, status string) ([]model.StockRequestWithDetails, error)
	Create(ctx context.Context, caller access.Caller, req CreateStockRequestRequest) (*model.StockRequest, error)
	Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateStockRequestRequest) (*model.StockRequest, error)
}

type stockRequestService struct {
	requests  repository.StockRequestRepository
	items     repository.InventoryRepository
	users     repository.UserRepository
	resolver  *resolver.Resolver
	txManager repository.TransactionManager
	recorder
}

func NewStockRequestService(
	requests repository.StockRequestRepository,
	items repository.InventoryRepository,
	users repository.UserRepository,
	res *resolver.Resolver,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) StockRequestService {
	return &stockRequestService{
		requests:  requests,
		items:     items,
		users:     users,
		resolver:  res,
		txManager: txManager,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *stockRequestService) List(ctx context.Context, caller access.Caller, status string) ([]model.StockRequestWithDetails, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}
	if status != "" {
		if err := oneOf("status", status, model.StockRequestPending, model.StockRequestApproved, model.StockRequestDenied); err != nil {
			return nil, err
		}
	}

	requests, err := s.requests.List(ctx, repository.StockRequestFilter{AgentID: scope.AgentFilter(), Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock requests: %w", err)
	}
	return s.resolver.StockRequests(ctx, requests)
}

func (s *stockRequestService) Create(ctx context.Context, caller access.Caller, req CreateStockRequestRequest) (*model.StockRequest, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	itemID, err := parseRef("itemId", req.ItemID)
	if err != nil {
		return nil, err
	}
	agentID := caller.ID
	if ref, err := parseOptionalRef("agentId", req.AgentID); err != nil {
		return nil, err
	} else if ref != nil {
		agentID = *ref
	}
	// agents only ever request stock for themselves
	if !caller.IsAdmin() && agentID != caller.ID {
		return nil, ErrForbidden
	}
	if req.QuantityRequested <= 0 {
		return nil, invalid("quantityRequested", "must be greater than 0")
	}

	request := &model.StockRequest{
		AgentID:           agentID,
		ItemID:            itemID,
		QuantityRequested: req.QuantityRequested,
		Status:            model.StockRequestPending,
		Reason:            optionalText(req.Reason),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.FindByID(txCtx, agentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("agentId", "user not found")
			}
			return err
		}
		item, err := s.items.FindByID(txCtx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("itemId", "inventory item not found")
			}
			return err
		}
		if err := s.requests.Create(txCtx, request); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateStockRequest, request.ID.String(), item.ItemName, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to create stock request")
	}

	s.committed("stock_request", "created", request)
	return request, nil
}

// Update edits a request. Deciding it (approved/denied) is admin-only and
// stamps approvedBy; approving takes the units out of inventory in the same
// transaction. An approved request keeps its status and quantity.
func (s *stockRequestService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateStockRequestRequest) (*model.StockRequest, error) {
	scope, err := access.ScopeFor(caller)
	if err != nil {
		return nil, err
	}
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load stock request")
	}
	if !scope.AllowsStockRequest(*request) {
		return nil, ErrNotFound
	}

	wasApproved := request.Status == model.StockRequestApproved

	if req.QuantityRequested != nil && *req.QuantityRequested != request.QuantityRequested {
		if wasApproved {
			return nil, invalid("quantityRequested", "cannot change once approved")
		}
		if *req.QuantityRequested <= 0 {
			return nil, invalid("quantityRequested", "must be greater than 0")
		}
		request.QuantityRequested = *req.QuantityRequested
	}
	if req.Reason != nil {
		request.Reason = optionalText(req.Reason)
	}
	if req.Status != nil && *req.Status != request.Status {
		next := *req.Status
		if err := oneOf("status", next, model.StockRequestPending, model.StockRequestApproved, model.StockRequestDenied); err != nil {
			return nil, err
		}
		if err := access.RequireAdmin(caller); err != nil {
			return nil, err
		}
		if wasApproved {
			return nil, invalid("status", "request is already approved")
		}
		request.Status = next
		if next == model.StockRequestPending {
			request.ApprovedBy = nil
		} else {
			approver := caller.ID
			request.ApprovedBy = &approver
		}
	}

	deduct := !wasApproved && request.Status == model.StockRequestApproved

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deduct {
			if err := s.items.Deduct(txCtx, request.ItemID, request.QuantityRequested); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("itemId", "inventory item not found")
				}
				return err
			}
		}
		if err := s.requests.Update(txCtx, request); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionUpdateStockRequest, request.ID.String(), request.Status, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to update stock request")
	}

	s.committed("stock_request", "updated", request)
	if deduct {
		s.events.Publish("inventory.deducted", map[string]interface{}{
			"itemId":   request.ItemID,
			"quantity": request.QuantityRequested,
		})
	}
	return request, nil
}
