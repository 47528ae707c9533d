package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CriticalStockLevel is the fixed quantity at or below which stock is critical,
// regardless of the item's own threshold.
const CriticalStockLevel = 5

// Stock level labels
const (
	StockCritical = "critical"
	StockLow      = "low"
	StockOK       = "in-stock"
)

// InventoryItem is a stocked component (panels, inverters, batteries...)
type InventoryItem struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ItemName    string              `gorm:"type:varchar(255);not null" json:"itemName"`
	Description *string             `gorm:"type:text" json:"description"`
	Quantity    int                 `gorm:"type:int;not null;default:0" json:"quantity"`
	Threshold   int                 `gorm:"type:int;not null" json:"threshold"`
	UnitPrice   decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"unitPrice"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (InventoryItem) TableName() string { return "inventory" }

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// IsLowStock reports quantity at or below the item's threshold
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.Threshold
}

// IsCriticalStock reports quantity at or below CriticalStockLevel
func (i InventoryItem) IsCriticalStock() bool {
	return i.Quantity <= CriticalStockLevel
}

// StockLevel classifies the item; critical wins over low.
func (i InventoryItem) StockLevel() string {
	switch {
	case i.IsCriticalStock():
		return StockCritical
	case i.IsLowStock():
		return StockLow
	default:
		return StockOK
	}
}

// StockRequestStatus enum constants
const (
	StockRequestPending  = "pending"
	StockRequestApproved = "approved"
	StockRequestDenied   = "denied"
)

// StockRequest is an agent asking for inventory to be released for a job
type StockRequest struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"agentId"`
	ItemID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"itemId"`
	QuantityRequested int        `gorm:"type:int;not null" json:"quantityRequested"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reason            *string    `gorm:"type:text" json:"reason"`
	ApprovedBy        *uuid.UUID `gorm:"type:uuid" json:"approvedBy"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (r *StockRequest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
