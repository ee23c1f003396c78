package domain

import (
	"time"

	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityTask    ActivityType = "task"
	ActivityCall    ActivityType = "call"
	ActivityMeeting ActivityType = "meeting"
	ActivityEmail   ActivityType = "email"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTask, ActivityCall, ActivityMeeting, ActivityEmail:
		return true
	}
	return false
}

type ActivityStatus string

const (
	ActivityOpen       ActivityStatus = "open"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
	ActivityCancelled  ActivityStatus = "cancelled"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityOpen, ActivityInProgress, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

type ActivityPriority string

const (
	PriorityLow    ActivityPriority = "low"
	PriorityNormal ActivityPriority = "normal"
	PriorityHigh   ActivityPriority = "high"
)

func (p ActivityPriority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

type Activity struct {
	ID            string           `json:"id" gorm:"primaryKey;size:36"`
	Type          ActivityType     `json:"type" gorm:"size:16;not null"`
	Subject       string           `json:"subject" gorm:"not null"`
	Description   *string          `json:"description,omitempty"`
	Status        ActivityStatus   `json:"status" gorm:"size:16;not null"`
	Priority      ActivityPriority `json:"priority" gorm:"size:8;not null"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	Duration      *int             `json:"duration,omitempty"`
	AccountID     *string          `json:"account_id,omitempty" gorm:"size:36"`
	ContactID     *string          `json:"contact_id,omitempty" gorm:"size:36"`
	LeadID        *string          `json:"lead_id,omitempty" gorm:"size:36"`
	OpportunityID *string          `json:"opportunity_id,omitempty" gorm:"size:36"`

	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Account     *AccountRef     `json:"account,omitempty" gorm:"-"`
	Contact     *ContactRef     `json:"contact,omitempty" gorm:"-"`
	Lead        *LeadRef        `json:"lead,omitempty" gorm:"-"`
	Opportunity *OpportunityRef `json:"opportunity,omitempty" gorm:"-"`
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
