package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalService_Create(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Kulkarni", &h.priya)

	a, err := h.approvals.Create(ctx, callerOf(h.priya), CreateApprovalRequest{ClientID: c.ID.String(), Step: model.StepApplication})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, a.Status)

	_, err = h.approvals.Create(ctx, callerOf(h.priya), CreateApprovalRequest{ClientID: uuid.NewString(), Step: model.StepNOC})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client not found", verr.Fields["clientId"])

	_, err = h.approvals.Create(ctx, callerOf(h.priya), CreateApprovalRequest{ClientID: c.ID.String(), Step: "survey"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "step")

	updated, err := h.approvals.Update(ctx, callerOf(h.admin), a.ID, UpdateApprovalRequest{
		Status: ptr(model.ApprovalApproved), Remarks: ptr("documents verified"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, updated.Status)
	assert.Equal(t, model.StepApplication, updated.Step)
	require.NotNil(t, updated.Remarks)

	list, err := h.approvals.List(ctx, callerOf(h.rohit), &c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = h.approvals.Get(ctx, callerOf(h.admin), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_CreateDefaults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Deshmukh", &h.priya)
	due := time.Now().Add(48 * time.Hour)

	task, err := h.tasks.Create(ctx, callerOf(h.priya), CreateTaskRequest{
		ClientID: c.ID.String(), Title: "Site survey", DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, h.priya.ID, task.AssignedAgentID)
	assert.Equal(t, model.TaskPending, task.Status)

	_, err = h.tasks.Create(ctx, callerOf(h.admin), CreateTaskRequest{
		ClientID: c.ID.String(), AssignedAgentID: ptr(uuid.NewString()), Title: "Ghost",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "assignedAgentId")
}

func TestTaskService_ScopeAndDrops(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Joshi", &h.priya)

	mine := &model.Task{ClientID: c.ID, AssignedAgentID: h.priya.ID, Title: "mine", Status: model.TaskPending}
	theirs := &model.Task{ClientID: c.ID, AssignedAgentID: h.rohit.ID, Title: "theirs", Status: model.TaskPending}
	orphan := &model.Task{ClientID: uuid.New(), AssignedAgentID: h.priya.ID, Title: "orphan", Status: model.TaskPending}
	for _, task := range []*model.Task{mine, theirs, orphan} {
		require.NoError(t, h.taskRepo.Create(ctx, task))
	}

	list, err := h.tasks.List(ctx, callerOf(h.priya), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Title)
	assert.Equal(t, "Joshi", list[0].Client.Name)

	all, err := h.tasks.List(ctx, callerOf(h.admin), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = h.tasks.Get(ctx, callerOf(h.priya), theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	done, err := h.tasks.Update(ctx, callerOf(h.priya), mine.ID, UpdateTaskRequest{Status: ptr(model.TaskCompleted)})
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "mine", done.Title)

	_, err = h.tasks.Update(ctx, callerOf(h.priya), mine.ID, UpdateTaskRequest{Title: ptr("  ")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTaskService_UpdateDueDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Pawar", &h.priya)
	due := time.Date(2026, time.November, 2, 9, 0, 0, 0, time.UTC)

	task, err := h.tasks.Create(ctx, callerOf(h.priya), CreateTaskRequest{ClientID: c.ID.String(), Title: "Net meter", DueDate: &due})
	require.NoError(t, err)

	update := func(body string) *model.Task {
		t.Helper()
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		out, err := h.tasks.Update(ctx, callerOf(h.priya), task.ID, req)
		require.NoError(t, err)
		return out
	}

	kept := update(`{"title":"Net meter install"}`)
	require.NotNil(t, kept.DueDate)
	assert.True(t, due.Equal(*kept.DueDate))

	moved := update(`{"dueDate":"2026-11-05T09:00:00Z"}`)
	require.NotNil(t, moved.DueDate)
	assert.Equal(t, 5, moved.DueDate.Day())

	cleared := update(`{"dueDate":null}`)
	assert.Nil(t, cleared.DueDate)

	stored, err := h.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DueDate)
	assert.Equal(t, "Net meter install", stored.Title)
}
