package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoicePaid    = "paid"
	InvoicePartial = "partial"
	InvoicePending = "pending"
)

// Invoice is a bill issued to a client. Only paid invoices count toward revenue.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"clientId"`
	InvoiceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoiceNumber"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amountPaid"`
	DueDate       time.Time       `gorm:"not null" json:"dueDate"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PdfURL        *string         `gorm:"type:text" json:"pdfUrl"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// DerivePaymentStatus maps the paid amount against the total onto an invoice status
func DerivePaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return InvoicePaid
	case paid.IsPositive():
		return InvoicePartial
	default:
		return InvoicePending
	}
}

// InvoiceItem represents a line item within an Invoice
type InvoiceItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoiceId"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"itemId"`
	Quantity   int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
