package workflows

import (
	"gorm.io/datatypes"

	"salescrm/internal/domain"
)

type CreateWorkflowRequest struct {
	Name              string                `json:"name" validate:"required"`
	Description       *string               `json:"description"`
	EntityType        domain.WorkflowEntity `json:"entity_type" validate:"required,oneof=account contact lead opportunity"`
	TriggerType       domain.TriggerType    `json:"trigger_type" validate:"omitempty,oneof=manual automatic"`
	TriggerConditions datatypes.JSON        `json:"trigger_conditions"`
	Actions           datatypes.JSON        `json:"actions"`
	IsActive          bool                  `json:"is_active"`
}

type UpdateWorkflowRequest struct {
	Name              *string                `json:"name"`
	Description       *string                `json:"description"`
	EntityType        *domain.WorkflowEntity `json:"entity_type" validate:"omitempty,oneof=account contact lead opportunity"`
	TriggerType       *domain.TriggerType    `json:"trigger_type" validate:"omitempty,oneof=manual automatic"`
	TriggerConditions *datatypes.JSON        `json:"trigger_conditions"`
	Actions           *datatypes.JSON        `json:"actions"`
	IsActive          *bool                  `json:"is_active"`
}

type ListFilter struct {
	Q          string `form:"q"`
	EntityType string `form:"entity_type"`
}
