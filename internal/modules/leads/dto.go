package leads

import "salescrm/internal/domain"

type CreateLeadRequest struct {
	FirstName     string            `json:"first_name" validate:"required"`
	LastName      string            `json:"last_name" validate:"required"`
	Company       *string           `json:"company"`
	Email         *string           `json:"email" validate:"omitempty,email"`
	Phone         *string           `json:"phone"`
	Title         *string           `json:"title"`
	LeadSource    *string           `json:"lead_source"`
	Status        domain.LeadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified unqualified"`
	Rating        domain.LeadRating `json:"rating" validate:"omitempty,oneof=hot warm cold"`
	Industry      *string           `json:"industry"`
	AnnualRevenue *float64          `json:"annual_revenue" validate:"omitempty,gte=0"`
	EmployeeCount *int              `json:"employee_count" validate:"omitempty,gte=0"`
	Description   *string           `json:"description"`
}

// UpdateLeadRequest has no conversion fields. Those are written by the
// conversion endpoint only.
type UpdateLeadRequest struct {
	FirstName     *string            `json:"first_name"`
	LastName      *string            `json:"last_name"`
	Company       *string            `json:"company"`
	Email         *string            `json:"email" validate:"omitempty,email"`
	Phone         *string            `json:"phone"`
	Title         *string            `json:"title"`
	LeadSource    *string            `json:"lead_source"`
	Status        *domain.LeadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified unqualified"`
	Rating        *domain.LeadRating `json:"rating" validate:"omitempty,oneof=hot warm cold"`
	Industry      *string            `json:"industry"`
	AnnualRevenue *float64           `json:"annual_revenue" validate:"omitempty,gte=0"`
	EmployeeCount *int               `json:"employee_count" validate:"omitempty,gte=0"`
	Description   *string            `json:"description"`
}

type ListFilter struct {
	Q      string `form:"q"`
	Status string `form:"status"`
	Rating string `form:"rating"`
}
