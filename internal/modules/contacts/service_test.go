package contacts

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
		svc:      NewService(repository.NewContactRepository(db), rec, nil),
		rec:      rec,
		accounts: repository.NewAccountRepository(db),
	}
}

func (f *fixture) account(t *testing.T, name string) *domain.Account {
	t.Helper()
	a := &domain.Account{Name: name, Type: domain.AccountCustomer}
	a.StampCreate(alice.UserID)
	require.NoError(t, f.accounts.Create(context.Background(), a))
	return a
}

func strPtr(s string) *string { return &s }

func TestService_CreateEmbedsAccount(t *testing.T) {
	f := newFixture(t)
	acme := f.account(t, "Acme")

	c, err := f.svc.Create(context.Background(), alice, CreateContactRequest{
		AccountID: &acme.ID,
		FirstName: "Ana",
		LastName:  "Ruiz",
		Email:     strPtr("ana@acme.io"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContactActive, c.Status)
	require.NotNil(t, c.Account)
	assert.Equal(t, "Acme", c.Account.Name)
	assert.Equal(t, "Contact created successfully", f.rec.Last().Message)
	assert.Equal(t, []string{notify.KeyContacts, notify.KeyDashboard}, f.rec.Invalidated(alice.UserID))
}

func TestService_CreateValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), alice, CreateContactRequest{FirstName: "Ana"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(context.Background(), alice, CreateContactRequest{FirstName: "Ana", LastName: "Ruiz", Email: strPtr("nope")})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Fields["email"])
	assert.Equal(t, notify.Error, f.rec.Last().Level)
}

func TestService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.account(t, "Acme")

	reqs := []CreateContactRequest{
		{FirstName: "Ana", LastName: "Ruiz", AccountID: &acme.ID},
		{FirstName: "Bo", LastName: "Chen", Email: strPtr("bo@globex.com"), Status: domain.ContactInactive},
		{FirstName: "Cy", LastName: "Adams"},
	}
	for _, req := range reqs {
		_, err := f.svc.Create(ctx, alice, req)
		require.NoError(t, err)
	}

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"full name", ListFilter{Q: "ana ruiz"}, []string{"Ana"}},
		{"email", ListFilter{Q: "GLOBEX"}, []string{"Bo"}},
		{"account name", ListFilter{Q: "acme"}, []string{"Ana"}},
		{"status", ListFilter{Status: "inactive"}, []string{"Bo"}},
		{"status all", ListFilter{Status: "all"}, []string{"Cy", "Bo", "Ana"}},
		{"no match", ListFilter{Q: "zed"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := f.svc.List(ctx, alice, tc.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.FirstName)
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestService_UpdateDetachesAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.account(t, "Acme")

	c, err := f.svc.Create(ctx, alice, CreateContactRequest{FirstName: "Ana", LastName: "Ruiz", AccountID: &acme.ID})
	require.NoError(t, err)

	inactive := domain.ContactInactive
	updated, err := f.svc.Update(ctx, alice, c.ID, UpdateContactRequest{AccountID: strPtr(""), Status: &inactive})
	require.NoError(t, err)
	assert.Nil(t, updated.AccountID)
	assert.Nil(t, updated.Account)
	assert.Equal(t, domain.ContactInactive, updated.Status)

	_, err = f.svc.Update(ctx, alice, c.ID, UpdateContactRequest{LastName: strPtr("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	opts, err := f.svc.Options(ctx, alice)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Ruiz", opts[0].LastName)

	require.NoError(t, f.svc.Delete(ctx, alice, c.ID))
	assert.Equal(t, "Contact deleted successfully", f.rec.Last().Message)
}
