package resolver

import (
	"testing"

	"solarflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveClients(t *testing.T) {
	agent := model.User{ID: uuid.New(), Name: "Priya"}
	missing := uuid.New()
	withAgent := model.Client{ID: uuid.New(), Name: "A", AssignedAgentID: &agent.ID}
	ghostAgent := model.Client{ID: uuid.New(), Name: "B", AssignedAgentID: &missing}
	unassigned := model.Client{ID: uuid.New(), Name: "C"}

	approvals := []model.Approval{
		{ID: uuid.New(), ClientID: withAgent.ID, Step: model.StepApplication},
		{ID: uuid.New(), ClientID: unassigned.ID, Step: model.StepNOC},
		{ID: uuid.New(), ClientID: withAgent.ID, Step: model.StepInspection},
	}
	tasks := []model.Task{{ID: uuid.New(), ClientID: ghostAgent.ID}}

	out := ResolveClients([]model.Client{withAgent, ghostAgent, unassigned}, []model.User{agent}, approvals, tasks)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].AssignedAgent)
	assert.Equal(t, "Priya", out[0].AssignedAgent.Name)
	require.Len(t, out[0].Approvals, 2)
	assert.Equal(t, model.StepApplication, out[0].Approvals[0].Step)
	assert.Equal(t, model.StepInspection, out[0].Approvals[1].Step)
	assert.NotNil(t, out[0].Tasks)
	assert.Empty(t, out[0].Tasks)

	assert.Nil(t, out[1].AssignedAgent, "optional reference stays empty")
	assert.Len(t, out[1].Tasks, 1)

	assert.Nil(t, out[2].AssignedAgent)
	assert.Len(t, out[2].Approvals, 1)
}

func TestResolveTasks_DropsMissingReferences(t *testing.T) {
	agent := model.User{ID: uuid.New()}
	client := model.Client{ID: uuid.New()}

	ok := model.Task{ID: uuid.New(), ClientID: client.ID, AssignedAgentID: agent.ID, Title: "site survey"}
	noClient := model.Task{ID: uuid.New(), ClientID: uuid.New(), AssignedAgentID: agent.ID}
	noAgent := model.Task{ID: uuid.New(), ClientID: client.ID, AssignedAgentID: uuid.New()}
	neither := model.Task{ID: uuid.New(), ClientID: uuid.New(), AssignedAgentID: uuid.New()}

	out, drops := ResolveTasks([]model.Task{noClient, ok, noAgent, neither}, []model.Client{client}, []model.User{agent})

	require.Len(t, out, 1)
	assert.Equal(t, ok.ID, out[0].ID)
	assert.Equal(t, client.ID, out[0].Client.ID)
	assert.Equal(t, agent.ID, out[0].AssignedAgent.ID)

	assert.Equal(t, []Drop{
		{Entity: EntityTask, ID: noClient.ID, Reason: ReasonClientMissing},
		{Entity: EntityTask, ID: noAgent.ID, Reason: ReasonAgentMissing},
		{Entity: EntityTask, ID: neither.ID, Reason: ReasonClientMissing},
	}, drops)
}

func TestResolveTasks_Empty(t *testing.T) {
	out, drops := ResolveTasks(nil, nil, nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, drops)
}

func TestResolveStockRequests(t *testing.T) {
	agent := model.User{ID: uuid.New()}
	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	item := model.InventoryItem{ID: uuid.New(), ItemName: "Inverter (5KW)"}
	goneApprover := uuid.New()

	approved := model.StockRequest{ID: uuid.New(), AgentID: agent.ID, ItemID: item.ID, ApprovedBy: &admin.ID}
	orphanApprover := model.StockRequest{ID: uuid.New(), AgentID: agent.ID, ItemID: item.ID, ApprovedBy: &goneApprover}
	noAgent := model.StockRequest{ID: uuid.New(), AgentID: uuid.New(), ItemID: item.ID}
	noItem := model.StockRequest{ID: uuid.New(), AgentID: agent.ID, ItemID: uuid.New()}

	out, drops := ResolveStockRequests(
		[]model.StockRequest{approved, noAgent, orphanApprover, noItem},
		[]model.User{agent, admin},
		[]model.InventoryItem{item},
	)

	require.Len(t, out, 2)
	require.NotNil(t, out[0].ApprovedByUser)
	assert.Equal(t, admin.ID, out[0].ApprovedByUser.ID)
	assert.Equal(t, "Inverter (5KW)", out[0].Item.ItemName)
	assert.Nil(t, out[1].ApprovedByUser)

	assert.Equal(t, []Drop{
		{Entity: EntityStockRequest, ID: noAgent.ID, Reason: ReasonAgentMissing},
		{Entity: EntityStockRequest, ID: noItem.ID, Reason: ReasonItemMissing},
	}, drops)
}

func TestResolveInvoices(t *testing.T) {
	client := model.Client{ID: uuid.New(), Name: "Sharma Residence"}
	panel := model.InventoryItem{ID: uuid.New(), ItemName: "Solar Panel (320W)"}

	inv := model.Invoice{ID: uuid.New(), ClientID: client.ID, TotalAmount: decimal.NewFromInt(30000)}
	orphan := model.Invoice{ID: uuid.New(), ClientID: uuid.New()}
	good := model.InvoiceItem{ID: uuid.New(), InvoiceID: inv.ID, ItemID: panel.ID, Quantity: 2}
	gone := model.InvoiceItem{ID: uuid.New(), InvoiceID: inv.ID, ItemID: uuid.New(), Quantity: 1}
	orphanLine := model.InvoiceItem{ID: uuid.New(), InvoiceID: orphan.ID, ItemID: panel.ID}

	out, drops := ResolveInvoices(
		[]model.Invoice{inv, orphan},
		[]model.Client{client},
		[]model.InvoiceItem{good, gone, orphanLine},
		[]model.InventoryItem{panel},
	)

	require.Len(t, out, 1)
	assert.Equal(t, "Sharma Residence", out[0].Client.Name)
	require.Len(t, out[0].Items, 1)
	assert.Equal(t, good.ID, out[0].Items[0].ID)
	assert.Equal(t, "Solar Panel (320W)", out[0].Items[0].Item.ItemName)

	assert.Equal(t, []Drop{
		{Entity: EntityInvoiceItem, ID: gone.ID, Reason: ReasonInventoryMissing},
		{Entity: EntityInvoice, ID: orphan.ID, Reason: ReasonClientMissing},
	}, drops)
}

func TestResolveInvoices_NoLinesGivesEmptyList(t *testing.T) {
	client := model.Client{ID: uuid.New()}
	out, drops := ResolveInvoices([]model.Invoice{{ID: uuid.New(), ClientID: client.ID}}, []model.Client{client}, nil, nil)
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].Items)
	assert.Empty(t, drops)
}

func TestUniqueIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids := uniqueIDs([]uuid.UUID{a, uuid.Nil, b, a}, func(id uuid.UUID) uuid.UUID { return id })
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}
