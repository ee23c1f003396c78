package domain

import (
	"time"

	"gorm.io/gorm"
)

type ContactStatus string

const (
	ContactActive   ContactStatus = "active"
	ContactInactive ContactStatus = "inactive"
)

func (s ContactStatus) Valid() bool {
	return s == ContactActive || s == ContactInactive
}

type Contact struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	AccountID  *string       `json:"account_id,omitempty" gorm:"size:36;index"`
	FirstName  string        `json:"first_name" gorm:"not null"`
	LastName   string        `json:"last_name" gorm:"not null"`
	Email      *string       `json:"email,omitempty"`
	Phone      *string       `json:"phone,omitempty"`
	Mobile     *string       `json:"mobile,omitempty"`
	Title      *string       `json:"title,omitempty"`
	Department *string       `json:"department,omitempty"`
	Status     ContactStatus `json:"status" gorm:"size:16;not null"`
	LeadSource *string       `json:"lead_source,omitempty"`

	SourceLeadID *string `json:"source_lead_id,omitempty" gorm:"size:36;index"`

	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Account *AccountRef `json:"account,omitempty" gorm:"-"`
}

func (c *Contact) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

type ContactRef struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AccountID *string `json:"account_id,omitempty"`
}
