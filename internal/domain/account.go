package domain

import (
	"time"

	"gorm.io/gorm"
)

type AccountType string

const (
	AccountProspect AccountType = "prospect"
	AccountCustomer AccountType = "customer"
	AccountPartner  AccountType = "partner"
	AccountVendor   AccountType = "vendor"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountProspect, AccountCustomer, AccountPartner, AccountVendor:
		return true
	}
	return false
}

type Account struct {
	ID            string      `json:"id" gorm:"primaryKey;size:36"`
	Name          string      `json:"name" gorm:"not null"`
	Type          AccountType `json:"type" gorm:"size:32;not null"`
	Industry      *string     `json:"industry,omitempty"`
	Website       *string     `json:"website,omitempty"`
	Phone         *string     `json:"phone,omitempty"`
	Email         *string     `json:"email,omitempty"`
	AnnualRevenue *float64    `json:"annual_revenue,omitempty"`
	EmployeeCount *int        `json:"employee_count,omitempty"`
	Description   *string     `json:"description,omitempty"`

	// SourceLeadID is set only on accounts created by lead conversion.
	SourceLeadID *string `json:"source_lead_id,omitempty" gorm:"size:36;index"`

	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AccountRef is the {id, name} projection embedded in related rows.
type AccountRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
