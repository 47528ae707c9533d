package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/session"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin agent"`
}

// AgentResponse is the public face of an agent in listings
type AgentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse never carries the password hash: model.User hides it from JSON
type LoginResponse struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

// UserService covers authentication and staff management
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	Logout(ctx context.Context, claims *session.Claims, refreshToken string) error
	Me(ctx context.Context, caller access.Caller) (*model.User, error)
	ListAgents(ctx context.Context, caller access.Caller) ([]AgentResponse, error)
	CreateUser(ctx context.Context, caller access.Caller, req CreateUserRequest) (*model.User, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    repository.RefreshTokenRepository
	txManager repository.TransactionManager
	sessions  *session.Manager
	recorder
}

func NewUserService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	sessions *session.Manager,
	events Publisher,
) UserService {
	return &userService{
		users:     users,
		tokens:    tokens,
		txManager: txManager,
		sessions:  sessions,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the presented one is consumed and a new pair issued
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}

	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issue(ctx, user)
}

func (s *userService) Logout(ctx context.Context, claims *session.Claims, refreshToken string) error {
	if claims != nil {
		if err := s.sessions.Revoke(ctx, claims); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	if refreshToken != "" {
		if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}
	}
	return nil
}

func (s *userService) Me(ctx context.Context, caller access.Caller) (*model.User, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, translate(err, "failed to load user")
	}
	return user, nil
}

func (s *userService) ListAgents(ctx context.Context, caller access.Caller) ([]AgentResponse, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, model.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	res := make([]AgentResponse, 0, len(users))
	for _, u := range users {
		res = append(res, AgentResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return res, nil
}

func (s *userService) CreateUser(ctx context.Context, caller access.Caller, req CreateUserRequest) (*model.User, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, invalid("role", "must be one of admin, agent")
	}
	if len(req.Password) < 6 {
		return nil, invalid("password", "must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: string(hashed),
		Role:     req.Role,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.FindByEmail(txCtx, user.Email); err == nil {
			return ErrConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionCreateUser, user.ID.String(), user.Name, map[string]string{
			"email": user.Email,
			"role":  user.Role,
		})
	})
	if err != nil {
		return nil, passthrough(err, "failed to create user")
	}

	s.committed("user", "created", user)
	return user, nil
}

func (s *userService) issue(ctx context.Context, user *model.User) (*LoginResponse, error) {
	token, claims, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := session.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	record := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(s.sessions.RefreshTTL()),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		User:         user,
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
