package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/notify/notifytest"
)

func TestOutcome(t *testing.T) {
	ctx := context.Background()
	rec := notifytest.New()

	notify.Outcome(ctx, rec, "u1", "create", "account", nil, notify.KeyAccounts, notify.KeyDashboard)
	assert.Equal(t, notifytest.Toast{UserID: "u1", Level: notify.Success, Message: "Account created successfully"}, rec.Last())
	assert.Equal(t, []string{notify.KeyAccounts, notify.KeyDashboard}, rec.Invalidated("u1"))

	notify.Outcome(ctx, rec, "u1", "delete", "activity", nil)
	assert.Equal(t, "Activity deleted successfully", rec.Last().Message)

	notify.Outcome(ctx, rec, "u1", "convert", "lead", nil)
	assert.Equal(t, "Lead converted successfully", rec.Last().Message)

	notify.Outcome(ctx, rec, "u1", "update", "contact", errors.New("permission denied"), notify.KeyContacts)
	assert.Equal(t, notifytest.Toast{UserID: "u1", Level: notify.Error, Message: "permission denied"}, rec.Last())

	notify.Outcome(ctx, rec, "u1", "update", "contact", errors.New(""))
	assert.Equal(t, "Failed to update contact", rec.Last().Message)

	// failures never invalidate
	assert.Len(t, rec.Invalidated("u1"), 2)
}
