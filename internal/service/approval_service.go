package service

import (
	"context"
	"errors"
	"fmt"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateApprovalRequest struct {
	ClientID    string  `json:"clientId" binding:"required,uuid"`
	Step        string  `json:"step" binding:"required,oneof=application verification inspection noc clearance"`
	Status      string  `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	Remarks     *string `json:"remarks"`
	DocumentURL *string `json:"documentUrl" binding:"omitempty,url"`
}

type UpdateApprovalRequest struct {
	Step        *string `json:"step" binding:"omitempty,oneof=application verification inspection noc clearance"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	Remarks     *string `json:"remarks"`
	DocumentURL *string `json:"documentUrl" binding:"omitempty,url"`
}

// --- Interface ---

type ApprovalService interface {
	List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.Approval, error)
	Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Approval, error)
	Create(ctx context.Context, caller access.Caller, req CreateApprovalRequest) (*model.Approval, error)
	Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateApprovalRequest) (*model.Approval, error)
}

type approvalService struct {
	approvals repository.ApprovalRepository
	clients   repository.ClientRepository
	txManager repository.TransactionManager
	recorder
}

func NewApprovalService(
	approvals repository.ApprovalRepository,
	clients repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) ApprovalService {
	return &approvalService{
		approvals: approvals,
		clients:   clients,
		txManager: txManager,
		recorder:  newRecorder(auditRepo, events),
	}
}

// --- Implementation ---

func (s *approvalService) List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.Approval, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	approvals, err := s.approvals.List(ctx, repository.ApprovalFilter{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return approvals, nil
}

func (s *approvalService) Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Approval, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	approval, err := s.approvals.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load approval")
	}
	return approval, nil
}

func (s *approvalService) Create(ctx context.Context, caller access.Caller, req CreateApprovalRequest) (*model.Approval, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	clientID, err := parseRef("clientId", req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := oneOf("step", req.Step, model.ApprovalSteps...); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.ApprovalPending
	}
	if err := oneOf("status", status, model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected); err != nil {
		return nil, err
	}

	approval := &model.Approval{
		ClientID:    clientID,
		Step:        req.Step,
		Status:      status,
		Remarks:     optionalText(req.Remarks),
		DocumentURL: optionalText(req.DocumentURL),
	}

	var client *model.Client
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err = s.clients.FindByID(txCtx, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("clientId", "client not found")
			}
			return err
		}
		if err := s.approvals.Create(txCtx, approval); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateApproval, approval.ID.String(), client.Name+" / "+approval.Step, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to create approval")
	}

	s.committed("approval", "created", approval)
	return approval, nil
}

func (s *approvalService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req UpdateApprovalRequest) (*model.Approval, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	approval, err := s.approvals.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load approval")
	}

	if req.Step != nil {
		if err := oneOf("step", *req.Step, model.ApprovalSteps...); err != nil {
			return nil, err
		}
		approval.Step = *req.Step
	}
	if req.Status != nil {
		if err := oneOf("status", *req.Status, model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected); err != nil {
			return nil, err
		}
		approval.Status = *req.Status
	}
	if req.Remarks != nil {
		approval.Remarks = optionalText(req.Remarks)
	}
	if req.DocumentURL != nil {
		approval.DocumentURL = optionalText(req.DocumentURL)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.approvals.Update(txCtx, approval); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionUpdateApproval, approval.ID.String(), approval.Step, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to update approval")
	}

	s.committed("approval", "updated", approval)
	return approval, nil
}
