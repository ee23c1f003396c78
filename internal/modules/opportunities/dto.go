package opportunities

import "salescrm/internal/domain"

type CreateOpportunityRequest struct {
	Name        string                  `json:"name" validate:"required"`
	AccountID   string                  `json:"account_id" validate:"required"`
	ContactID   *string                 `json:"contact_id"`
	Amount      *float64                `json:"amount" validate:"omitempty,gte=0"`
	Stage       domain.OpportunityStage `json:"stage" validate:"omitempty,oneof=qualification needs_analysis proposal negotiation closed_won closed_lost"`
	Probability *int                    `json:"probability" validate:"omitempty,min=0,max=100"`
	CloseDate   *string                 `json:"close_date" validate:"omitempty,datetime=2006-01-02"`
	LeadSource  *string                 `json:"lead_source"`
	Description *string                 `json:"description"`
	Competitor  *string                 `json:"competitor"`
	NextStep    *string                 `json:"next_step"`
}

type UpdateOpportunityRequest struct {
	Name        *string                  `json:"name"`
	AccountID   *string                  `json:"account_id"`
	ContactID   *string                  `json:"contact_id"`
	Amount      *float64                 `json:"amount" validate:"omitempty,gte=0"`
	Stage       *domain.OpportunityStage `json:"stage" validate:"omitempty,oneof=qualification needs_analysis proposal negotiation closed_won closed_lost"`
	Probability *int                     `json:"probability" validate:"omitempty,min=0,max=100"`
	CloseDate   *string                  `json:"close_date" validate:"omitempty,datetime=2006-01-02"`
	LeadSource  *string                  `json:"lead_source"`
	Description *string                  `json:"description"`
	Competitor  *string                  `json:"competitor"`
	NextStep    *string                  `json:"next_step"`
}

type ListFilter struct {
	Q     string `form:"q"`
	Stage string `form:"stage"`
}
