package conversion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salescrm/internal/domain"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/notify/notifytest"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
	"salescrm/internal/repository/repotest"
)

var (
	alice = session.Principal{UserID: "user-alice", Email: "alice@example.com", SessionID: "s1"}
	bob   = session.Principal{UserID: "user-bob", Email: "bob@example.com", SessionID: "s2"}
)

var modes = []Mode{ModeTransactional, ModeSequential}

// Store wrappers that fail on demand.

type accountStore struct {
	*repository.AccountRepository
	createErr error
	deleteErr error
}

func (s *accountStore) Create(ctx context.Context, a *domain.Account) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.AccountRepository.Create(ctx, a)
}

func (s *accountStore) Delete(ctx context.Context, ownerID, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.AccountRepository.Delete(ctx, ownerID, id)
}

type contactStore struct {
	*repository.ContactRepository
	createErr error
}

func (s *contactStore) Create(ctx context.Context, c *domain.Contact) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.ContactRepository.Create(ctx, c)
}

type leadStore struct {
	*repository.LeadRepository
	markErr error
	// stale makes Get report the lead as unconverted regardless of the row.
	stale bool
}

func (s *leadStore) Get(ctx context.Context, ownerID, id string) (*domain.Lead, error) {
	l, err := s.LeadRepository.Get(ctx, ownerID, id)
	if err == nil && s.stale {
		l.Converted = false
	}
	return l, err
}

func (s *leadStore) MarkConverted(ctx context.Context, ownerID, id, accountID, contactID, actorID string, at time.Time) (*domain.Lead, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	return s.LeadRepository.MarkConverted(ctx, ownerID, id, accountID, contactID, actorID, at)
}

type fixture struct {
	db       *repository.DB
	svc      *Service
	rec      *notifytest.Recorder
	locker   *LocalLocker
	leads    *leadStore
	accounts *accountStore
	contacts *contactStore
}

func newFixture(t *testing.T, mode Mode, compensate bool) *fixture {
	t.Helper()
	db := repotest.New(t)
	f := &fixture{
		db:       db,
		rec:      notifytest.New(),
		locker:   NewLocalLocker(),
		leads:    &leadStore{LeadRepository: repository.NewLeadRepository(db)},
		accounts: &accountStore{AccountRepository: repository.NewAccountRepository(db)},
		contacts: &contactStore{ContactRepository: repository.NewContactRepository(db)},
	}
	f.svc = NewService(db, f.leads, f.accounts, f.contacts, f.locker, f.rec,
		Options{Mode: mode, Compensate: compensate}, nil)
	return f
}

func (f *fixture) lead(t *testing.T, owner session.Principal, l domain.Lead) *domain.Lead {
	t.Helper()
	if l.Status == "" {
		l.Status = domain.LeadQualified
	}
	if l.Rating == "" {
		l.Rating = domain.RatingWarm
	}
	l.StampCreate(owner.UserID)
	require.NoError(t, f.leads.LeadRepository.Create(context.Background(), &l))
	return &l
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Gorm().Model(model).Count(&n).Error)
	return n
}

func (f *fixture) reload(t *testing.T, id string) *domain.Lead {
	t.Helper()
	l, err := f.leads.LeadRepository.GetByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func strPtr(s string) *string { return &s }

func storeErr(msg string) error {
	return &apperr.RemoteError{Op: "insert", Err: errors.New(msg)}
}

func TestConvert_Scenarios(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			t.Run("person lead", func(t *testing.T) {
				f := newFixture(t, mode, false)
				lead := f.lead(t, alice, domain.Lead{
					FirstName: "Ana",
					LastName:  "Ruiz",
					Company:   strPtr(""),
					Email:     strPtr("ana@x.com"),
				})

				res, err := f.svc.Convert(context.Background(), alice, lead.ID)
				require.NoError(t, err)

				assert.Equal(t, "Ana Ruiz", res.Account.Name)
				assert.Equal(t, domain.AccountCustomer, res.Account.Type)
				assert.Equal(t, alice.UserID, res.Account.OwnerID)
				assert.Equal(t, "Ana", res.Contact.FirstName)
				assert.Equal(t, "Ruiz", res.Contact.LastName)
				assert.Equal(t, "ana@x.com", domain.Deref(res.Contact.Email))
				assert.Equal(t, domain.ContactActive, res.Contact.Status)
				assert.Equal(t, res.Account.ID, domain.Deref(res.Contact.AccountID))

				assert.True(t, res.Lead.Converted)
				assert.Equal(t, res.Account.ID, domain.Deref(res.Lead.ConvertedAccountID))
				assert.Equal(t, res.Contact.ID, domain.Deref(res.Lead.ConvertedContactID))
				assert.NotNil(t, res.Lead.ConvertedAt)
				assert.Equal(t, alice.UserID, domain.Deref(res.Lead.UpdatedBy))

				assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
				assert.EqualValues(t, 1, f.count(t, &domain.Contact{}))

				assert.Equal(t, notifytest.Toast{UserID: alice.UserID, Level: notify.Success, Message: "Lead converted successfully"}, f.rec.Last())
				assert.Subset(t, f.rec.Invalidated(alice.UserID), []string{notify.KeyLeads, notify.KeyAccounts, notify.KeyContacts})
			})

			t.Run("company lead", func(t *testing.T) {
				f := newFixture(t, mode, false)
				revenue := 2.5e6
				lead := f.lead(t, alice, domain.Lead{
					FirstName:     "Bo",
					LastName:      "Lee",
					Company:       strPtr("Acme"),
					Industry:      strPtr("Manufacturing"),
					AnnualRevenue: &revenue,
					Title:         strPtr("CTO"),
					LeadSource:    strPtr("web"),
				})

				res, err := f.svc.Convert(context.Background(), alice, lead.ID)
				require.NoError(t, err)
				assert.Equal(t, "Acme", res.Account.Name)
				assert.Equal(t, "Manufacturing", domain.Deref(res.Account.Industry))
				assert.InDelta(t, revenue, *res.Account.AnnualRevenue, 0.01)
				assert.Equal(t, lead.ID, domain.Deref(res.Account.SourceLeadID))
				assert.Equal(t, "CTO", domain.Deref(res.Contact.Title))
				assert.Equal(t, "web", domain.Deref(res.Contact.LeadSource))
				assert.Equal(t, lead.ID, domain.Deref(res.Contact.SourceLeadID))
			})
		})
	}
}

func TestConvert_AccountFailureIsCleanAbort(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode, false)
			lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
			f.accounts.createErr = storeErr("permission denied for table accounts")

			_, err := f.svc.Convert(context.Background(), alice, lead.ID)
			require.Error(t, err)

			var remote *apperr.RemoteError
			assert.ErrorAs(t, err, &remote)
			var partial *PartialConversionError
			assert.False(t, errors.As(err, &partial))

			assert.Zero(t, f.count(t, &domain.Contact{}))
			assert.False(t, f.reload(t, lead.ID).Converted)
			assert.Equal(t, notifytest.Toast{UserID: alice.UserID, Level: notify.Error, Message: "permission denied for table accounts"}, f.rec.Last())
			assert.Empty(t, f.rec.Invalidated(alice.UserID))
		})
	}
}

func TestConvert_ContactFailure(t *testing.T) {
	t.Run("sequential leaves the account and reports a partial conversion", func(t *testing.T) {
		f := newFixture(t, ModeSequential, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.contacts.createErr = storeErr("contacts_email_check")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, StepCreateContact, partial.Step)
		assert.Equal(t, lead.ID, partial.LeadID)
		assert.NotEmpty(t, partial.AccountID)
		assert.Empty(t, partial.ContactID)
		assert.False(t, partial.Compensated)

		var remote *apperr.RemoteError
		assert.ErrorAs(t, err, &remote)

		acct, err := f.accounts.Get(context.Background(), alice.UserID, partial.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Ruiz", acct.Name)
		assert.Zero(t, f.count(t, &domain.Contact{}))
		assert.False(t, f.reload(t, lead.ID).Converted)

		assert.Equal(t, notify.Error, f.rec.Last().Level)
		assert.Equal(t, partial.Error(), f.rec.Last().Message)
		assert.Contains(t, f.rec.Invalidated(alice.UserID), notify.KeyAccounts)
	})

	t.Run("sequential with compensation removes the account", func(t *testing.T) {
		f := newFixture(t, ModeSequential, true)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.contacts.createErr = storeErr("contacts_email_check")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.True(t, partial.Compensated)
		assert.Zero(t, f.count(t, &domain.Account{}))
		assert.False(t, f.reload(t, lead.ID).Converted)
		assert.Empty(t, f.rec.Invalidated(alice.UserID))
	})

	t.Run("transactional rolls the account back", func(t *testing.T) {
		f := newFixture(t, ModeTransactional, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.contacts.createErr = storeErr("contacts_email_check")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var remote *apperr.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "contacts_email_check", err.Error())
		var partial *PartialConversionError
		assert.False(t, errors.As(err, &partial))

		assert.Zero(t, f.count(t, &domain.Account{}))
		assert.Zero(t, f.count(t, &domain.Contact{}))
		assert.False(t, f.reload(t, lead.ID).Converted)
	})
}

func TestConvert_MarkFailure(t *testing.T) {
	t.Run("sequential", func(t *testing.T) {
		f := newFixture(t, ModeSequential, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.leads.markErr = storeErr("statement timeout")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, StepMarkLead, partial.Step)
		assert.NotEmpty(t, partial.AccountID)
		assert.NotEmpty(t, partial.ContactID)
		assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
		assert.EqualValues(t, 1, f.count(t, &domain.Contact{}))
		assert.False(t, f.reload(t, lead.ID).Converted)
	})

	t.Run("sequential with compensation", func(t *testing.T) {
		f := newFixture(t, ModeSequential, true)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.leads.markErr = storeErr("statement timeout")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.True(t, partial.Compensated)
		assert.Zero(t, f.count(t, &domain.Account{}))
		assert.Zero(t, f.count(t, &domain.Contact{}))
	})

	t.Run("sequential compensation that fails is reported", func(t *testing.T) {
		f := newFixture(t, ModeSequential, true)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.leads.markErr = storeErr("statement timeout")
		f.accounts.deleteErr = storeErr("permission denied")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)

		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.False(t, partial.Compensated)
		assert.Zero(t, f.count(t, &domain.Contact{}))
		assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
	})

	t.Run("transactional", func(t *testing.T) {
		f := newFixture(t, ModeTransactional, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.leads.markErr = storeErr("statement timeout")

		_, err := f.svc.Convert(context.Background(), alice, lead.ID)
		assert.EqualError(t, err, "statement timeout")
		assert.Zero(t, f.count(t, &domain.Account{}))
		assert.Zero(t, f.count(t, &domain.Contact{}))
	})
}

func TestConvert_RejectsConvertedLead(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode, false)
			lead := f.lead(t, alice, domain.Lead{FirstName: "Bo", LastName: "Lee", Company: strPtr("Acme")})

			_, err := f.svc.Convert(context.Background(), alice, lead.ID)
			require.NoError(t, err)

			_, err = f.svc.Convert(context.Background(), alice, lead.ID)
			assert.ErrorIs(t, err, ErrAlreadyConverted)
			assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
			assert.EqualValues(t, 1, f.count(t, &domain.Contact{}))
			assert.Equal(t, ErrAlreadyConverted.Error(), f.rec.Last().Message)
		})
	}
}

func TestConvert_ConditionalPatchCatchesStaleRead(t *testing.T) {
	t.Run("transactional rolls back", func(t *testing.T) {
		f := newFixture(t, ModeTransactional, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Bo", LastName: "Lee"})
		_, err := f.svc.Convert(context.Background(), alice, lead.ID)
		require.NoError(t, err)

		f.leads.stale = true
		_, err = f.svc.Convert(context.Background(), alice, lead.ID)
		assert.ErrorIs(t, err, ErrAlreadyConverted)
		assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
		assert.EqualValues(t, 1, f.count(t, &domain.Contact{}))
	})

	t.Run("sequential compensates", func(t *testing.T) {
		f := newFixture(t, ModeSequential, true)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Bo", LastName: "Lee"})
		first, err := f.svc.Convert(context.Background(), alice, lead.ID)
		require.NoError(t, err)

		f.leads.stale = true
		_, err = f.svc.Convert(context.Background(), alice, lead.ID)
		var partial *PartialConversionError
		require.ErrorAs(t, err, &partial)
		assert.ErrorIs(t, err, ErrAlreadyConverted)
		assert.True(t, partial.Compensated)
		assert.EqualValues(t, 1, f.count(t, &domain.Account{}))

		after := f.reload(t, lead.ID)
		assert.Equal(t, first.Account.ID, domain.Deref(after.ConvertedAccountID))
	})
}

func TestConvert_PreconditionsWriteNothing(t *testing.T) {
	f := newFixture(t, ModeSequential, false)
	lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})

	_, err := f.svc.Convert(context.Background(), session.Principal{}, lead.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.Empty(t, f.rec.Toasts())

	_, err = f.svc.Convert(context.Background(), bob, lead.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Convert(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Zero(t, f.count(t, &domain.Account{}))
	assert.Zero(t, f.count(t, &domain.Contact{}))
	assert.False(t, f.reload(t, lead.ID).Converted)
}

func TestConvert_InFlightGuard(t *testing.T) {
	f := newFixture(t, ModeTransactional, false)
	lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})

	unlock, err := f.locker.Acquire(context.Background(), lockKey(alice.UserID, lead.ID), time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Convert(context.Background(), alice, lead.ID)
	assert.ErrorIs(t, err, ErrConversionInFlight)
	assert.Zero(t, f.count(t, &domain.Account{}))

	require.NoError(t, unlock(context.Background()))
	_, err = f.svc.Convert(context.Background(), alice, lead.ID)
	assert.NoError(t, err)
}

func TestConvert_InFlightGuardIsPerOwner(t *testing.T) {
	f := newFixture(t, ModeTransactional, false)
	lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})

	unlock, err := f.locker.Acquire(context.Background(), lockKey(alice.UserID, lead.ID), time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	_, err = f.svc.Convert(context.Background(), bob, lead.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, ErrConversionInFlight)
	assert.False(t, f.reload(t, lead.ID).Converted)
}

func TestConvert_ConcurrentRequestsConvertOnce(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode, false)
			lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})

			const n = 8
			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = f.svc.Convert(context.Background(), alice, lead.ID)
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.True(t, errors.Is(err, ErrConversionInFlight) || errors.Is(err, ErrAlreadyConverted), err)
			}
			assert.Equal(t, 1, succeeded)
			assert.EqualValues(t, 1, f.count(t, &domain.Account{}))
			assert.EqualValues(t, 1, f.count(t, &domain.Contact{}))
		})
	}
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	args := m.Called(ctx, key, ttl)
	unlock, _ := args.Get(0).(Unlock)
	return unlock, args.Error(1)
}

func TestConvert_LockerFailure(t *testing.T) {
	f := newFixture(t, ModeTransactional, false)
	lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})

	locker := new(mockLocker)
	locker.On("Acquire", mock.Anything, "conversion:user-alice:"+lead.ID, 5*time.Second).
		Return(nil, errors.New("dial tcp: connection refused"))
	svc := NewService(f.db, f.leads, f.accounts, f.contacts, locker, f.rec,
		Options{LockTTL: 5 * time.Second}, nil)

	_, err := svc.Convert(context.Background(), alice, lead.ID)
	var remote *apperr.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "conversion.lock", remote.Op)
	assert.Zero(t, f.count(t, &domain.Account{}))
	locker.AssertExpectations(t)
}

func TestState(t *testing.T) {
	next, err := StateOf(&domain.Lead{}).Convert()
	require.NoError(t, err)
	assert.Equal(t, Converted, next)

	_, err = StateOf(&domain.Lead{Converted: true}).Convert()
	assert.ErrorIs(t, err, ErrAlreadyConverted)
}
