package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalStep enum constants, in pipeline order
const (
	StepApplication  = "application"
	StepVerification = "verification"
	StepInspection   = "inspection"
	StepNOC          = "noc"
	StepClearance    = "clearance"
)

// ApprovalSteps is the fixed government approval pipeline
var ApprovalSteps = []string{StepApplication, StepVerification, StepInspection, StepNOC, StepClearance}

// ApprovalStatus enum constants
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Approval records where a client stands on one step of the approval pipeline
type Approval struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`
	Step        string    `gorm:"type:varchar(20);not null;index" json:"step"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Remarks     *string   `gorm:"type:text" json:"remarks"`
	DocumentURL *string   `gorm:"type:text" json:"documentUrl"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
