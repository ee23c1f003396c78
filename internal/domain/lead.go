package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadNew         LeadStatus = "new"
	LeadContacted   LeadStatus = "contacted"
	LeadQualified   LeadStatus = "qualified"
	LeadUnqualified LeadStatus = "unqualified"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadUnqualified:
		return true
	}
	return false
}

type LeadRating string

const (
	RatingHot  LeadRating = "hot"
	RatingWarm LeadRating = "warm"
	RatingCold LeadRating = "cold"
)

func (r LeadRating) Valid() bool {
	return r == RatingHot || r == RatingWarm || r == RatingCold
}

type Lead struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	FirstName     string     `json:"first_name" gorm:"not null"`
	LastName      string     `json:"last_name" gorm:"not null"`
	Company       *string    `json:"company,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Title         *string    `json:"title,omitempty"`
	LeadSource    *string    `json:"lead_source,omitempty"`
	Status        LeadStatus `json:"status" gorm:"size:16;not null"`
	Rating        LeadRating `json:"rating" gorm:"size:8;not null"`
	Industry      *string    `json:"industry,omitempty"`
	AnnualRevenue *float64   `json:"annual_revenue,omitempty"`
	EmployeeCount *int       `json:"employee_count,omitempty"`
	Description   *string    `json:"description,omitempty"`

	// Conversion markers. Written once, by the conversion sequence only.
	Converted          bool       `json:"converted" gorm:"not null;default:false"`
	ConvertedAccountID *string    `json:"converted_account_id,omitempty" gorm:"size:36"`
	ConvertedContactID *string    `json:"converted_contact_id,omitempty" gorm:"size:36"`
	ConvertedAt        *time.Time `json:"converted_at,omitempty"`

	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// AccountName is the name given to the account created from this lead:
// the company when present, the person's full name otherwise.
func (l *Lead) AccountName() string {
	if l.Company != nil && strings.TrimSpace(*l.Company) != "" {
		return *l.Company
	}
	return l.FullName()
}

type LeadRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
