package service

import (
	"context"
	"fmt"

	"solarflow/internal/access"
	"solarflow/internal/repository"
	"solarflow/pkg/pagination"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Action     string `json:"action"`
	EntityID   string `json:"entityId"`
	EntityName string `json:"entityName"`
	Details    string `json:"details"`
	CreatedAt  string `json:"createdAt"`
}

type AuditService interface {
	List(ctx context.Context, caller access.Caller, filter repository.AuditFilter, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// List returns one page of audit entries, newest first. Admin only.
func (s *auditService) List(ctx context.Context, caller access.Caller, filter repository.AuditFilter, page, limit int) ([]AuditLogResponse, int64, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}
	params := pagination.New(page, limit)

	logs, total, err := s.repo.List(ctx, filter, params.Page, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		name := "System"
		userID := ""
		if l.User != nil {
			name = l.User.Name
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserName:   name,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return res, total, nil
}
