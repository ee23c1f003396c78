package opportunities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescrm/internal/domain"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/notify/notifytest"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
	"salescrm/internal/repository/repotest"
)

var alice = session.Principal{UserID: "user-alice", Email: "alice@example.com", SessionID: "s1"}

type fixture struct {
	svc      *Service
	rec      *notifytest.Recorder
	accounts *repository.AccountRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.New(t)
	rec := notifytest.New()
	return &fixture{
		svc:      NewService(repository.NewOpportunityRepository(db), rec, nil),
		rec:      rec,
		accounts: repository.NewAccountRepository(db),
	}
}

func (f *fixture) account(t *testing.T, name string) string {
	t.Helper()
	a := &domain.Account{Name: name, Type: domain.AccountCustomer}
	a.StampCreate(alice.UserID)
	require.NoError(t, f.accounts.Create(context.Background(), a))
	return a.ID
}

func TestService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	acme := f.account(t, "Acme")

	o, err := f.svc.Create(context.Background(), alice, CreateOpportunityRequest{Name: "Renewal", AccountID: acme})
	require.NoError(t, err)
	assert.Equal(t, domain.StageQualification, o.Stage)
	assert.Equal(t, 10, o.Probability)
	require.NotNil(t, o.Account)
	assert.Equal(t, "Acme", o.Account.Name)
	assert.Equal(t, "Opportunity created successfully", f.rec.Last().Message)
	assert.Equal(t, []string{notify.KeyOpportunities, notify.KeyDashboard}, f.rec.Invalidated(alice.UserID))
}

func TestService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.account(t, "Acme")
	over := 120
	date := "31/12/2026"

	_, err := f.svc.Create(ctx, alice, CreateOpportunityRequest{Name: "Renewal"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Create(ctx, alice, CreateOpportunityRequest{Name: "Renewal", AccountID: acme, Probability: &over})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Create(ctx, alice, CreateOpportunityRequest{Name: "Renewal", AccountID: acme, CloseDate: &date})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_ListAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.account(t, "Acme")
	globex := f.account(t, "Globex")

	renewal, err := f.svc.Create(ctx, alice, CreateOpportunityRequest{Name: "Renewal", AccountID: acme})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, alice, CreateOpportunityRequest{Name: "Expansion", AccountID: globex, Stage: domain.StageProposal})
	require.NoError(t, err)

	rows, err := f.svc.List(ctx, alice, ListFilter{Q: "globex"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Expansion", rows[0].Name)

	rows, err = f.svc.List(ctx, alice, ListFilter{Stage: "qualification"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Renewal", rows[0].Name)

	won := domain.StageClosedWon
	amount := 5000.0
	updated, err := f.svc.Update(ctx, alice, renewal.ID, UpdateOpportunityRequest{Stage: &won, Amount: &amount, AccountID: &globex})
	require.NoError(t, err)
	assert.Equal(t, domain.StageClosedWon, updated.Stage)
	assert.InDelta(t, 5000.0, *updated.Amount, 0.001)
	assert.Equal(t, "Globex", updated.Account.Name)

	blank := ""
	_, err = f.svc.Update(ctx, alice, renewal.ID, UpdateOpportunityRequest{AccountID: &blank})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, f.svc.Delete(ctx, alice, renewal.ID))
	assert.Equal(t, "Opportunity deleted successfully", f.rec.Last().Message)
}
