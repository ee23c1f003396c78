package contacts

import "salescrm/internal/domain"

type CreateContactRequest struct {
	AccountID  *string              `json:"account_id"`
	FirstName  string               `json:"first_name" validate:"required"`
	LastName   string               `json:"last_name" validate:"required"`
	Email      *string              `json:"email" validate:"omitempty,email"`
	Phone      *string              `json:"phone"`
	Mobile     *string              `json:"mobile"`
	Title      *string              `json:"title"`
	Department *string              `json:"department"`
	Status     domain.ContactStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	LeadSource *string              `json:"lead_source"`
}

type UpdateContactRequest struct {
	AccountID  *string               `json:"account_id"`
	FirstName  *string               `json:"first_name"`
	LastName   *string               `json:"last_name"`
	Email      *string               `json:"email" validate:"omitempty,email"`
	Phone      *string               `json:"phone"`
	Mobile     *string               `json:"mobile"`
	Title      *string               `json:"title"`
	Department *string               `json:"department"`
	Status     *domain.ContactStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	LeadSource *string               `json:"lead_source"`
}

type ListFilter struct {
	Q      string `form:"q"`
	Status string `form:"status"`
}
