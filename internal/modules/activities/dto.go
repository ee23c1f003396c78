package activities

import "salescrm/internal/domain"

// DueDate accepts RFC 3339, the "2006-01-02T15:04" form posted by
// datetime-local inputs, or a bare date.
type CreateActivityRequest struct {
	Type          domain.ActivityType     `json:"type" validate:"omitempty,oneof=task call meeting email"`
	Subject       string                  `json:"subject" validate:"required"`
	Description   *string                 `json:"description"`
	Status        domain.ActivityStatus   `json:"status" validate:"omitempty,oneof=open in_progress completed cancelled"`
	Priority      domain.ActivityPriority `json:"priority" validate:"omitempty,oneof=low normal high"`
	DueDate       *string                 `json:"due_date"`
	Duration      *int                    `json:"duration" validate:"omitempty,gte=0"`
	AccountID     *string                 `json:"account_id"`
	ContactID     *string                 `json:"contact_id"`
	LeadID        *string                 `json:"lead_id"`
	OpportunityID *string                 `json:"opportunity_id"`
}

type UpdateActivityRequest struct {
	Type          *domain.ActivityType     `json:"type" validate:"omitempty,oneof=task call meeting email"`
	Subject       *string                  `json:"subject"`
	Description   *string                  `json:"description"`
	Status        *domain.ActivityStatus   `json:"status" validate:"omitempty,oneof=open in_progress completed cancelled"`
	Priority      *domain.ActivityPriority `json:"priority" validate:"omitempty,oneof=low normal high"`
	DueDate       *string                  `json:"due_date"`
	Duration      *int                     `json:"duration" validate:"omitempty,gte=0"`
	AccountID     *string                  `json:"account_id"`
	ContactID     *string                  `json:"contact_id"`
	LeadID        *string                  `json:"lead_id"`
	OpportunityID *string                  `json:"opportunity_id"`
}

type ListFilter struct {
	Q      string `form:"q"`
	Type   string `form:"type"`
	Status string `form:"status"`
}
