package accounts

import "salescrm/internal/domain"

type CreateAccountRequest struct {
	Name          string             `json:"name" validate:"required"`
	Type          domain.AccountType `json:"type" validate:"omitempty,oneof=prospect customer partner vendor"`
	Industry      *string            `json:"industry"`
	Website       *string            `json:"website"`
	Phone         *string            `json:"phone"`
	Email         *string            `json:"email" validate:"omitempty,email"`
	AnnualRevenue *float64           `json:"annual_revenue" validate:"omitempty,gte=0"`
	EmployeeCount *int               `json:"employee_count" validate:"omitempty,gte=0"`
	Description   *string            `json:"description"`
}

// UpdateAccountRequest is a partial update. Absent fields are untouched,
// blank optional text clears the column.
type UpdateAccountRequest struct {
	Name          *string             `json:"name"`
	Type          *domain.AccountType `json:"type" validate:"omitempty,oneof=prospect customer partner vendor"`
	Industry      *string             `json:"industry"`
	Website       *string             `json:"website"`
	Phone         *string             `json:"phone"`
	Email         *string             `json:"email" validate:"omitempty,email"`
	AnnualRevenue *float64            `json:"annual_revenue" validate:"omitempty,gte=0"`
	EmployeeCount *int                `json:"employee_count" validate:"omitempty,gte=0"`
	Description   *string             `json:"description"`
}

// ListFilter mirrors the accounts screen: search by name, filter by type.
type ListFilter struct {
	Q    string `form:"q"`
	Type string `form:"type"`
}
