// Package access decides which rows a caller may see or change.
package access

import (
	"errors"

	"solarflow/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied: insufficient permissions")
)

// Caller is the authenticated identity behind a request
type Caller struct {
	ID   uuid.UUID
	Role string
}

func (c Caller) Validate() error {
	if c.ID == uuid.Nil || !model.ValidRole(c.Role) {
		return ErrUnauthenticated
	}
	return nil
}

func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// Scope is the slice of agent-owned data a caller may touch. Admins get an
// unrestricted scope; agents are pinned to their own id.
type Scope struct {
	agentID *uuid.UUID
}

// Unrestricted is the admin scope
var Unrestricted = Scope{}

func ScopeFor(c Caller) (Scope, error) {
	if err := c.Validate(); err != nil {
		return Scope{}, err
	}
	if c.IsAdmin() {
		return Unrestricted, nil
	}
	id := c.ID
	return Scope{agentID: &id}, nil
}

// AgentFilter is the assignee id repositories should filter on, nil when unrestricted
func (s Scope) AgentFilter() *uuid.UUID {
	if s.agentID == nil {
		return nil
	}
	id := *s.agentID
	return &id
}

func (s Scope) Restricted() bool { return s.agentID != nil }

func (s Scope) AllowsClient(c model.Client) bool {
	if s.agentID == nil {
		return true
	}
	return c.AssignedAgentID != nil && *c.AssignedAgentID == *s.agentID
}

func (s Scope) AllowsTask(t model.Task) bool {
	return s.agentID == nil || t.AssignedAgentID == *s.agentID
}

func (s Scope) AllowsStockRequest(r model.StockRequest) bool {
	return s.agentID == nil || r.AgentID == *s.agentID
}

// RequireAdmin guards admin-only actions
func RequireAdmin(c Caller) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
