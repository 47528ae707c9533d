package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateClient       = "CREATE_CLIENT"
	ActionUpdateClient       = "UPDATE_CLIENT"
	ActionCreateApproval     = "CREATE_APPROVAL"
	ActionUpdateApproval     = "UPDATE_APPROVAL"
	ActionCreateTask         = "CREATE_TASK"
	ActionUpdateTask         = "UPDATE_TASK"
	ActionCreateInventory    = "CREATE_INVENTORY_ITEM"
	ActionUpdateInventory    = "UPDATE_INVENTORY_ITEM"
	ActionCreateStockRequest = "CREATE_STOCK_REQUEST"
	ActionUpdateStockRequest = "UPDATE_STOCK_REQUEST"
	ActionCreateInvoice      = "CREATE_INVOICE"
	ActionRecordPayment      = "RECORD_PAYMENT"
	ActionCreateUser         = "CREATE_USER"
)

// AuditLog tracks Who, What, and When for every mutation
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"userId"` // nil for seed/system writes
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entityId"`
	EntityName string     `gorm:"type:varchar(255)" json:"entityName,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
