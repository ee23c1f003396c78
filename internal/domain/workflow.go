package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkflowEntity string

const (
	WorkflowAccount     WorkflowEntity = "account"
	WorkflowContact     WorkflowEntity = "contact"
	WorkflowLead        WorkflowEntity = "lead"
	WorkflowOpportunity WorkflowEntity = "opportunity"
)

func (e WorkflowEntity) Valid() bool {
	switch e {
	case WorkflowAccount, WorkflowContact, WorkflowLead, WorkflowOpportunity:
		return true
	}
	return false
}

type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerAutomatic TriggerType = "automatic"
)

func (t TriggerType) Valid() bool {
	return t == TriggerManual || t == TriggerAutomatic
}

// Workflow is a stored automation definition. Workflows are scoped by
// created_by and are never executed by this service.
type Workflow struct {
	ID                string         `json:"id" gorm:"primaryKey;size:36"`
	Name              string         `json:"name" gorm:"not null"`
	Description       *string        `json:"description,omitempty"`
	EntityType        WorkflowEntity `json:"entity_type" gorm:"size:16;not null"`
	TriggerType       TriggerType    `json:"trigger_type" gorm:"size:16;not null"`
	TriggerConditions datatypes.JSON `json:"trigger_conditions,omitempty"`
	Actions           datatypes.JSON `json:"actions,omitempty"`
	IsActive          bool           `json:"is_active" gorm:"not null;default:false"`
	CreatedBy         string         `json:"created_by" gorm:"size:36;index;not null"`
	UpdatedBy         *string        `json:"updated_by,omitempty" gorm:"size:36"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (w *Workflow) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}
