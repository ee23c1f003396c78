package domain

import (
	"time"

	"gorm.io/gorm"
)

type OpportunityStage string

const (
	StageQualification OpportunityStage = "qualification"
	StageNeedsAnalysis OpportunityStage = "needs_analysis"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed_won"
	StageClosedLost    OpportunityStage = "closed_lost"
)

func (s OpportunityStage) Valid() bool {
	switch s {
	case StageQualification, StageNeedsAnalysis, StageProposal,
		StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

type Opportunity struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	Name        string           `json:"name" gorm:"not null"`
	AccountID   string           `json:"account_id" gorm:"size:36;not null;index"`
	ContactID   *string          `json:"contact_id,omitempty" gorm:"size:36"`
	Amount      *float64         `json:"amount,omitempty"`
	Stage       OpportunityStage `json:"stage" gorm:"size:32;not null"`
	Probability int              `json:"probability"`
	CloseDate   *string          `json:"close_date,omitempty" gorm:"size:10"`
	LeadSource  *string          `json:"lead_source,omitempty"`
	Description *string          `json:"description,omitempty"`
	Competitor  *string          `json:"competitor,omitempty"`
	NextStep    *string          `json:"next_step,omitempty"`

	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Account *AccountRef `json:"account,omitempty" gorm:"-"`
	Contact *ContactRef `json:"contact,omitempty" gorm:"-"`
}

func (o *Opportunity) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

type OpportunityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
