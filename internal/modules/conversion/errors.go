package conversion

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConverted   = errors.New("lead has already been converted")
	ErrConversionInFlight = errors.New("lead conversion already in progress")
)

// Step names a write of the conversion sequence.
type Step string

const (
	StepCreateAccount Step = "create_account"
	StepCreateContact Step = "create_contact"
	StepMarkLead      Step = "mark_lead_converted"
)

// PartialConversionError reports a sequence that failed after the account
// was committed. AccountID and ContactID name the records left behind;
// Compensated is true when all of them were deleted again.
type PartialConversionError struct {
	Step        Step   `json:"step"`
	LeadID      string `json:"lead_id"`
	AccountID   string `json:"account_id,omitempty"`
	ContactID   string `json:"contact_id,omitempty"`
	Compensated bool   `json:"compensated"`
	Err         error  `json:"-"`
}

func (e *PartialConversionError) Error() string {
	state := "orphaned records remain"
	if e.Compensated {
		state = "created records were removed"
	}
	return fmt.Sprintf("lead conversion failed at %s (%s): %v", e.Step, state, e.Err)
}

func (e *PartialConversionError) Unwrap() error { return e.Err }
