package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus enum constants
const (
	ProjectStatusLead       = "lead"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusCompleted  = "completed"
)

// Client is a household or business that wants a solar installation
type Client struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	Email           *string    `gorm:"type:varchar(255)" json:"email"`
	Phone           string     `gorm:"type:varchar(50);not null" json:"phone"`
	Address         string     `gorm:"type:text;not null" json:"address"`
	AssignedAgentID *uuid.UUID `gorm:"type:uuid;index" json:"assignedAgentId"`
	ProjectStatus   string     `gorm:"type:varchar(20);not null;default:'lead';index" json:"projectStatus"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
