package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"solarflow/internal/model"
	"solarflow/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClients(t *testing.T, repo ClientRepository, n int) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		c := &model.Client{Name: fmt.Sprintf("Client %d", i), Phone: "1", Address: "Pune", ProjectStatus: model.ProjectStatusLead}
		require.NoError(t, repo.Create(ctx, c))
		ids = append(ids, c.ID)
	}
	return ids
}

func TestFindByIDs_SpansSeveralChunks(t *testing.T) {
	db := testutil.NewDB(t)
	clients := NewClientRepository(db)
	ctx := context.Background()

	ids := seedClients(t, clients, 2*maxIDsPerQuery+7)

	found, err := clients.FindByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, found, len(ids))

	found, err = clients.FindByIDs(ctx, append(ids[:3:3], uuid.New()))
	require.NoError(t, err)
	assert.Len(t, found, 3)

	found, err = clients.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestApprovalList_ClientIDsAcrossChunks(t *testing.T) {
	db := testutil.NewDB(t)
	clients := NewClientRepository(db)
	approvals := NewApprovalRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	ids := seedClients(t, clients, maxIDsPerQuery+5)
	first, last := ids[0], ids[len(ids)-1]
	agent := uuid.New()
	for _, id := range []uuid.UUID{first, last, last} {
		require.NoError(t, approvals.Create(ctx, &model.Approval{ClientID: id, Step: model.StepApplication, Status: model.ApprovalPending}))
		require.NoError(t, tasks.Create(ctx, &model.Task{ClientID: id, AssignedAgentID: agent, Title: "visit", Status: model.TaskPending}))
	}
	require.NoError(t, approvals.Create(ctx, &model.Approval{ClientID: uuid.New(), Step: model.StepNOC, Status: model.ApprovalPending}))

	got, err := approvals.List(ctx, ApprovalFilter{ClientIDs: ids})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	gotTasks, err := tasks.List(ctx, TaskFilter{ClientIDs: ids, AgentID: &agent})
	require.NoError(t, err)
	assert.Len(t, gotTasks, 3)

	got, err = approvals.List(ctx, ApprovalFilter{ClientIDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = approvals.List(ctx, ApprovalFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestRunInTx(t *testing.T) {
	db := testutil.NewDB(t)
	tx := NewTransactionManager(db)
	clients := NewClientRepository(db)
	ctx := context.Background()

	t.Run("rolls back every write on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.RunInTx(ctx, func(txCtx context.Context) error {
			require.NoError(t, clients.Create(txCtx, &model.Client{Name: "Temp", Phone: "1", Address: "x", ProjectStatus: model.ProjectStatusLead}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, err := clients.List(ctx, ClientFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("nested calls share the outer transaction", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.RunInTx(ctx, func(outer context.Context) error {
			require.NoError(t, tx.RunInTx(outer, func(inner context.Context) error {
				return clients.Create(inner, &model.Client{Name: "Inner", Phone: "1", Address: "x", ProjectStatus: model.ProjectStatusLead})
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, err := clients.List(ctx, ClientFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestAuditList_FiltersAndPages(t *testing.T) {
	db := testutil.NewDB(t)
	audit := NewAuditRepository(db)
	ctx := context.Background()

	target := uuid.NewString()
	entries := []model.AuditLog{
		{Action: model.ActionCreateClient, EntityID: target},
		{Action: model.ActionUpdateClient, EntityID: target},
		{Action: model.ActionUpdateClient, EntityID: uuid.NewString()},
		{Action: model.ActionCreateTask, EntityID: uuid.NewString()},
	}
	for i := range entries {
		require.NoError(t, audit.Log(ctx, &entries[i]))
	}

	all, total, err := audit.List(ctx, AuditFilter{}, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 3)

	byEntity, total, err := audit.List(ctx, AuditFilter{EntityID: target}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, byEntity, 2)

	updates, total, err := audit.List(ctx, AuditFilter{Action: model.ActionUpdateClient, EntityID: target}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, updates, 1)
	assert.Nil(t, updates[0].User)
}
