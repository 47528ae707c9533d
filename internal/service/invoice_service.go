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
	"solarflow/internal/resolver"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceNumberPrefix starts every generated invoice number: INV-YYYYMMDD-NNNNN
const InvoiceNumberPrefix = "INV-"

type InvoiceLineRequest struct {
	ItemID    string  `json:"itemId" binding:"required,uuid"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice *string `json:"unitPrice" binding:"omitempty,decimal"`
}

type CreateInvoiceRequest struct {
	ClientID      string               `json:"clientId" binding:"required,uuid"`
	InvoiceNumber string               `json:"invoiceNumber" binding:"omitempty,max=30"`
	TotalAmount   *string              `json:"totalAmount" binding:"omitempty,decimal"`
	AmountPaid    *string              `json:"amountPaid" binding:"omitempty,decimal"`
	DueDate       *time.Time           `json:"dueDate" binding:"required"`
	Status        string               `json:"status" binding:"omitempty,oneof=paid partial pending"`
	PdfURL        *string              `json:"pdfUrl" binding:"omitempty,url"`
	Items         []InvoiceLineRequest `json:"items" binding:"omitempty,dive"`
}

type RecordPaymentRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
}

type InvoiceService interface {
	List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.InvoiceWithItems, error)
	Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.InvoiceWithItems, error)
	Create(ctx context.Context, caller access.Caller, req CreateInvoiceRequest) (*model.Invoice, error)
	RecordPayment(ctx context.Context, caller access.Caller, id uuid.UUID, req RecordPaymentRequest) (*model.Invoice, error)
}

type invoiceService struct {
	invoices  repository.InvoiceRepository
	clients   repository.ClientRepository
	items     repository.InventoryRepository
	resolver  *resolver.Resolver
	txManager repository.TransactionManager
	now       func() time.Time
	recorder
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	clients repository.ClientRepository,
	items repository.InventoryRepository,
	res *resolver.Resolver,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events Publisher,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		clients:   clients,
		items:     items,
		resolver:  res,
		txManager: txManager,
		now:       time.Now,
		recorder:  newRecorder(auditRepo, events),
	}
}

func (s *invoiceService) List(ctx context.Context, caller access.Caller, clientID *uuid.UUID) ([]model.InvoiceWithItems, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	invoices, err := s.invoices.List(ctx, repository.InvoiceFilter{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return s.resolver.Invoices(ctx, invoices)
}

func (s *invoiceService) Get(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.InvoiceWithItems, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load invoice")
	}
	resolved, err := s.resolver.Invoices(ctx, []model.Invoice{*invoice})
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, ErrNotFound
	}
	return &resolved[0], nil
}

// Create stores the invoice and its lines in one transaction. Line prices
// default to the inventory unit price; the total defaults to the sum of the
// lines and the status to what the paid amount implies.
func (s *invoiceService) Create(ctx context.Context, caller access.Caller, req CreateInvoiceRequest) (*model.Invoice, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	clientID, err := parseRef("clientId", req.ClientID)
	if err != nil {
		return nil, err
	}
	if req.DueDate == nil || req.DueDate.IsZero() {
		return nil, invalid("dueDate", "is required")
	}
	if req.Status != "" {
		if err := oneOf("status", req.Status, model.InvoicePaid, model.InvoicePartial, model.InvoicePending); err != nil {
			return nil, err
		}
	}
	if len(req.Items) == 0 && req.TotalAmount == nil {
		return nil, invalid("totalAmount", "is required when no items are given")
	}

	paid := decimal.Zero
	if req.AmountPaid != nil {
		if paid, err = parseMoney("amountPaid", *req.AmountPaid); err != nil {
			return nil, err
		}
	}

	invoice := &model.Invoice{
		ClientID:      clientID,
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		AmountPaid:    paid,
		DueDate:       *req.DueDate,
		PdfURL:        optionalText(req.PdfURL),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clients.FindByID(txCtx, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("clientId", "client not found")
			}
			return err
		}

		lines, sum, err := s.priceLines(txCtx, req.Items)
		if err != nil {
			return err
		}

		invoice.TotalAmount = sum
		if req.TotalAmount != nil {
			if invoice.TotalAmount, err = parseMoney("totalAmount", *req.TotalAmount); err != nil {
				return err
			}
		}
		invoice.Status = req.Status
		if invoice.Status == "" {
			invoice.Status = model.DerivePaymentStatus(invoice.TotalAmount, invoice.AmountPaid)
		}

		if invoice.InvoiceNumber == "" {
			if invoice.InvoiceNumber, err = s.nextNumber(txCtx); err != nil {
				return err
			}
		}

		if err := s.invoices.Create(txCtx, invoice); err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if err := s.invoices.CreateItems(txCtx, lines); err != nil {
			return err
		}

		return s.log(txCtx, caller, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, map[string]interface{}{
			"client":      client.Name,
			"totalAmount": invoice.TotalAmount,
			"items":       len(lines),
		})
	})
	if err != nil {
		return nil, passthrough(err, "failed to create invoice")
	}

	s.committed("invoice", "created", invoice)
	return invoice, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, caller access.Caller, id uuid.UUID, req RecordPaymentRequest) (*model.Invoice, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	amount, err := parseMoney("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be greater than 0")
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.invoices.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		invoice = found
		invoice.AmountPaid = invoice.AmountPaid.Add(amount)
		invoice.Status = model.DerivePaymentStatus(invoice.TotalAmount, invoice.AmountPaid)

		if err := s.invoices.Update(txCtx, invoice); err != nil {
			return err
		}
		return s.log(txCtx, caller, model.ActionRecordPayment, invoice.ID.String(), invoice.InvoiceNumber, map[string]interface{}{
			"amount":     amount,
			"amountPaid": invoice.AmountPaid,
			"status":     invoice.Status,
		})
	})
	if err != nil {
		return nil, passthrough(err, "failed to record payment")
	}

	s.committed("invoice", "paid", invoice)
	return invoice, nil
}

func (s *invoiceService) priceLines(ctx context.Context, reqs []InvoiceLineRequest) ([]model.InvoiceItem, decimal.Decimal, error) {
	lines := make([]model.InvoiceItem, 0, len(reqs))
	sum := decimal.Zero
	if len(reqs) == 0 {
		return lines, sum, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for i, r := range reqs {
		id, err := parseRef(fmt.Sprintf("items[%d].itemId", i), r.ItemID)
		if err != nil {
			return nil, sum, err
		}
		if r.Quantity <= 0 {
			return nil, sum, invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		ids = append(ids, id)
	}

	stock, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, sum, err
	}
	byID := make(map[uuid.UUID]model.InventoryItem, len(stock))
	for _, it := range stock {
		byID[it.ID] = it
	}

	for i, r := range reqs {
		item, ok := byID[ids[i]]
		if !ok {
			return nil, sum, invalid(fmt.Sprintf("items[%d].itemId", i), "inventory item not found")
		}

		var price decimal.Decimal
		switch {
		case r.UnitPrice != nil:
			if price, err = parseMoney(fmt.Sprintf("items[%d].unitPrice", i), *r.UnitPrice); err != nil {
				return nil, sum, err
			}
		case item.UnitPrice.Valid:
			price = item.UnitPrice.Decimal
		default:
			return nil, sum, invalid(fmt.Sprintf("items[%d].unitPrice", i), "is required for items without a list price")
		}

		total := price.Mul(decimal.NewFromInt(int64(r.Quantity)))
		sum = sum.Add(total)
		lines = append(lines, model.InvoiceItem{
			ItemID:     item.ID,
			Quantity:   r.Quantity,
			UnitPrice:  price,
			TotalPrice: total,
		})
	}
	return lines, sum, nil
}

// nextNumber numbers invoices per day in the server's local date
func (s *invoiceService) nextNumber(ctx context.Context) (string, error) {
	prefix := InvoiceNumberPrefix + s.now().Format("20060102") + "-"
	n, err := s.invoices.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, n+1), nil
}
