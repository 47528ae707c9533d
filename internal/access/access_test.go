package access

import (
	"testing"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerValidate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		caller Caller
		ok     bool
	}{
		{"admin", Caller{ID: id, Role: model.RoleAdmin}, true},
		{"agent", Caller{ID: id, Role: model.RoleAgent}, true},
		{"nil id", Caller{Role: model.RoleAdmin}, false},
		{"empty role", Caller{ID: id}, false},
		{"unknown role", Caller{ID: id, Role: "manager"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.caller.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthenticated)
			}
		})
	}
}

func TestScopeFor_Admin(t *testing.T) {
	scope, err := ScopeFor(Caller{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)

	other := uuid.New()
	assert.False(t, scope.Restricted())
	assert.Nil(t, scope.AgentFilter())
	assert.True(t, scope.AllowsClient(model.Client{}))
	assert.True(t, scope.AllowsClient(model.Client{AssignedAgentID: &other}))
	assert.True(t, scope.AllowsTask(model.Task{AssignedAgentID: other}))
	assert.True(t, scope.AllowsStockRequest(model.StockRequest{AgentID: other}))
}

func TestScopeFor_Agent(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	scope, err := ScopeFor(Caller{ID: me, Role: model.RoleAgent})
	require.NoError(t, err)

	require.NotNil(t, scope.AgentFilter())
	assert.Equal(t, me, *scope.AgentFilter())
	assert.True(t, scope.Restricted())

	assert.True(t, scope.AllowsClient(model.Client{AssignedAgentID: &me}))
	assert.False(t, scope.AllowsClient(model.Client{AssignedAgentID: &other}))
	assert.False(t, scope.AllowsClient(model.Client{}), "unassigned clients are admin-only")

	assert.True(t, scope.AllowsTask(model.Task{AssignedAgentID: me}))
	assert.False(t, scope.AllowsTask(model.Task{AssignedAgentID: other}))

	assert.True(t, scope.AllowsStockRequest(model.StockRequest{AgentID: me}))
	assert.False(t, scope.AllowsStockRequest(model.StockRequest{AgentID: other}))
}

func TestScopeFor_RejectsInvalidCaller(t *testing.T) {
	_, err := ScopeFor(Caller{ID: uuid.New(), Role: "guest"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAgentFilterReturnsCopy(t *testing.T) {
	me := uuid.New()
	scope, _ := ScopeFor(Caller{ID: me, Role: model.RoleAgent})
	f := scope.AgentFilter()
	*f = uuid.New()
	assert.Equal(t, me, *scope.AgentFilter())
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Caller{ID: uuid.New(), Role: model.RoleAdmin}))
	assert.ErrorIs(t, RequireAdmin(Caller{ID: uuid.New(), Role: model.RoleAgent}), ErrForbidden)
	assert.ErrorIs(t, RequireAdmin(Caller{}), ErrUnauthenticated)
}
