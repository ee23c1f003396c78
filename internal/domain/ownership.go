package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Ownership is stamped on every write from the acting principal.
// Values supplied by API callers are always overwritten.
type Ownership struct {
	OwnerID   string  `json:"owner_id" gorm:"column:owner_id;size:36;index;not null"`
	CreatedBy string  `json:"created_by" gorm:"column:created_by;size:36;not null"`
	UpdatedBy *string `json:"updated_by,omitempty" gorm:"column:updated_by;size:36"`
}

// StampCreate assigns ownership for a new row. The creator is also the
// first updater.
func (o *Ownership) StampCreate(userID string) {
	o.OwnerID = userID
	o.CreatedBy = userID
	o.StampUpdate(userID)
}

// StampUpdate records the user touching an existing row.
func (o *Ownership) StampUpdate(userID string) {
	v := userID
	o.UpdatedBy = &v
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// Str returns a pointer to s, or nil for blank input.
func Str(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the value behind p, or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Optional normalizes an optional request field: nil and blank become nil.
func Optional(p *string) *string {
	if p == nil {
		return nil
	}
	return Str(*p)
}
