package service

import (
	"context"
	"testing"
	"time"

	"solarflow/internal/model"
	"solarflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_CreateDerivesTotals(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.invoices.(*invoiceService).now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local) }

	c := h.client(t, "Iyer Residence", &h.priya)
	inverter := seedItem(t, h, 8)
	panel := &model.InventoryItem{ItemName: "Solar Panel (320W)", Quantity: 25, Threshold: 50}
	require.NoError(t, h.inventoryRepo.Create(ctx, panel))
	due := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)

	inv, err := h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{
		ClientID:   c.ID.String(),
		AmountPaid: ptr("50000"),
		DueDate:    &due,
		Items: []InvoiceLineRequest{
			{ItemID: inverter.ID.String(), Quantity: 2},
			{ItemID: panel.ID.String(), Quantity: 10, UnitPrice: ptr("15000")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20260314-00001", inv.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(240000).Equal(inv.TotalAmount), inv.TotalAmount.String())
	assert.Equal(t, model.InvoicePartial, inv.Status)

	got, err := h.invoices.Get(ctx, callerOf(h.rohit), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Iyer Residence", got.Client.Name)
	require.Len(t, got.Items, 2)
	for _, line := range got.Items {
		assert.True(t, line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Equal(line.TotalPrice))
	}

	second, err := h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{
		ClientID: c.ID.String(), TotalAmount: ptr("1000"), DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20260314-00002", second.InvoiceNumber)
	assert.Equal(t, model.InvoicePending, second.Status)

	_, err = h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{
		ClientID: c.ID.String(), InvoiceNumber: "INV-20260314-00002", TotalAmount: ptr("1"), DueDate: &due,
	})
	assert.ErrorIs(t, err, ErrConflict)

	list, err := h.invoices.List(ctx, callerOf(h.admin), &c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInvoiceService_CreateRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Rao", nil)
	unpriced := &model.InventoryItem{ItemName: "Junction Box", Quantity: 4, Threshold: 2}
	require.NoError(t, h.inventoryRepo.Create(ctx, unpriced))
	due := time.Now().Add(30 * 24 * time.Hour)

	_, err := h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{
		ClientID: c.ID.String(), DueDate: &due,
		Items: []InvoiceLineRequest{{ItemID: unpriced.ID.String(), Quantity: 1}},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].unitPrice")

	_, err = h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{
		ClientID: uuid.NewString(), TotalAmount: ptr("10"), DueDate: &due,
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "clientId")

	all, err := h.invoiceRepo.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "Nair", nil)
	due := time.Now()

	inv, err := h.invoices.Create(ctx, callerOf(h.admin), CreateInvoiceRequest{ClientID: c.ID.String(), TotalAmount: ptr("100000"), DueDate: &due})
	require.NoError(t, err)

	partial, err := h.invoices.RecordPayment(ctx, callerOf(h.admin), inv.ID, RecordPaymentRequest{Amount: "40000"})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePartial, partial.Status)

	paid, err := h.invoices.RecordPayment(ctx, callerOf(h.admin), inv.ID, RecordPaymentRequest{Amount: "60000"})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, paid.Status)
	assert.True(t, decimal.NewFromInt(100000).Equal(paid.AmountPaid))

	_, err = h.invoices.RecordPayment(ctx, callerOf(h.admin), inv.ID, RecordPaymentRequest{Amount: "0"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = h.invoices.RecordPayment(ctx, callerOf(h.admin), uuid.New(), RecordPaymentRequest{Amount: "1"})
	assert.ErrorIs(t, err, ErrNotFound)

	logs, _, err := h.audit.List(ctx, callerOf(h.admin), repository.AuditFilter{}, 1, 50)
	require.NoError(t, err)
	var payments int
	for _, l := range logs {
		if l.Action == model.ActionRecordPayment {
			payments++
			assert.Equal(t, "John Smith", l.UserName)
		}
	}
	assert.Equal(t, 2, payments)

	_, _, err = h.audit.List(ctx, callerOf(h.priya), repository.AuditFilter{}, 1, 50)
	assert.ErrorIs(t, err, ErrForbidden)
}
