package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus enum constants
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskOverdue   = "overdue"
)

// Task is a reminder or follow-up assigned to an agent for a client
type Task struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"clientId"`
	AssignedAgentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assignedAgentId"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Description     *string    `gorm:"type:text" json:"description"`
	DueDate         *time.Time `json:"dueDate"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
