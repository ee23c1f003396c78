// Package conversion turns a lead into an account and a contact and marks
// the lead converted. The three writes always happen in that order; Mode
// decides whether they share one database transaction.
package conversion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"salescrm/internal/domain"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
)

type Mode string

const (
	// ModeTransactional runs the three writes in one transaction. A failure
	// rolls back all of them.
	ModeTransactional Mode = "transactional"
	// ModeSequential commits each write on its own. A failure after the
	// account exists is reported as a *PartialConversionError.
	ModeSequential Mode = "sequential"
)

const defaultLockTTL = 30 * time.Second

type LeadStore interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Lead, error)
	MarkConverted(ctx context.Context, ownerID, id, accountID, contactID, actorID string, at time.Time) (*domain.Lead, error)
}

type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, ownerID, id string) error
}

type ContactStore interface {
	Create(ctx context.Context, c *domain.Contact) error
	Delete(ctx context.Context, ownerID, id string) error
}

type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Options struct {
	Mode Mode
	// Compensate deletes the records created before a sequential failure.
	Compensate bool
	LockTTL    time.Duration
	Now        func() time.Time
}

// Result holds the records written by a successful conversion.
type Result struct {
	Account *domain.Account `json:"account"`
	Contact *domain.Contact `json:"contact"`
	Lead    *domain.Lead    `json:"lead"`
}

type Service struct {
	tx       Transactor
	leads    LeadStore
	accounts AccountStore
	contacts ContactStore
	locker   Locker
	sink     notify.Sink
	opts     Options
	log      *zap.Logger
}

func NewService(tx Transactor, leads LeadStore, accounts AccountStore, contacts ContactStore, locker Locker, sink notify.Sink, opts Options, log *zap.Logger) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeTransactional
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tx:       tx,
		leads:    leads,
		accounts: accounts,
		contacts: contacts,
		locker:   locker,
		sink:     sink,
		opts:     opts,
		log:      log.Named("conversion"),
	}
}

// lockKey is scoped by owner so a foreign lead id never collides with a
// conversion the owner has in flight.
func lockKey(ownerID, leadID string) string {
	return "conversion:" + ownerID + ":" + leadID
}

// Convert converts the actor's lead. Nothing is written unless the actor
// is signed in, no other conversion of the lead is running, the lead
// exists in the actor's view and it is still unconverted.
func (s *Service) Convert(ctx context.Context, actor session.Principal, leadID string) (res *Result, err error) {
	if !actor.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, actor, leadID, err) }()

	unlock, err := s.locker.Acquire(ctx, lockKey(actor.UserID, leadID), s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, ErrConversionInFlight
		}
		return nil, apperr.Remote("conversion.lock", err)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			s.log.Warn("release conversion lock", zap.String("lead_id", leadID), zap.Error(uerr))
		}
	}()

	lead, err := s.leads.Get(ctx, actor.UserID, leadID)
	if err != nil {
		return nil, err
	}
	if _, err := StateOf(lead).Convert(); err != nil {
		return nil, err
	}

	if s.opts.Mode == ModeSequential {
		return s.convertSequential(ctx, actor, lead)
	}
	return s.convertTransactional(ctx, actor, lead)
}

func (s *Service) convertTransactional(ctx context.Context, actor session.Principal, lead *domain.Lead) (*Result, error) {
	var res *Result
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		account := accountFromLead(lead, actor.UserID)
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		contact := contactFromLead(lead, account.ID, actor.UserID)
		if err := s.contacts.Create(ctx, contact); err != nil {
			return err
		}
		converted, err := s.leads.MarkConverted(ctx, actor.UserID, lead.ID, account.ID, contact.ID, actor.UserID, s.opts.Now().UTC())
		if err != nil {
			return err
		}
		res = &Result{Account: account, Contact: contact, Lead: converted}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLeadConverted) {
			return nil, ErrAlreadyConverted
		}
		return nil, apperr.Remote("conversion.commit", err)
	}
	return res, nil
}

func (s *Service) convertSequential(ctx context.Context, actor session.Principal, lead *domain.Lead) (*Result, error) {
	account := accountFromLead(lead, actor.UserID)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	contact := contactFromLead(lead, account.ID, actor.UserID)
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, s.partial(ctx, actor, &PartialConversionError{
			Step:      StepCreateContact,
			LeadID:    lead.ID,
			AccountID: account.ID,
			Err:       err,
		})
	}

	converted, err := s.leads.MarkConverted(ctx, actor.UserID, lead.ID, account.ID, contact.ID, actor.UserID, s.opts.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrLeadConverted) {
			err = ErrAlreadyConverted
		}
		return nil, s.partial(ctx, actor, &PartialConversionError{
			Step:      StepMarkLead,
			LeadID:    lead.ID,
			AccountID: account.ID,
			ContactID: contact.ID,
			Err:       err,
		})
	}
	return &Result{Account: account, Contact: contact, Lead: converted}, nil
}

// partial logs the leftovers of a failed sequence and, when enabled,
// deletes them newest first.
func (s *Service) partial(ctx context.Context, actor session.Principal, perr *PartialConversionError) error {
	log := s.log.With(
		zap.String("lead_id", perr.LeadID),
		zap.String("step", string(perr.Step)),
		zap.String("account_id", perr.AccountID),
		zap.String("contact_id", perr.ContactID),
	)
	if !s.opts.Compensate {
		log.Error("partial lead conversion", zap.Error(perr.Err))
		return perr
	}

	ctx = context.WithoutCancel(ctx)
	ok := true
	if perr.ContactID != "" {
		if err := s.contacts.Delete(ctx, actor.UserID, perr.ContactID); err != nil {
			log.Error("compensate contact", zap.Error(err))
			ok = false
		}
	}
	if err := s.accounts.Delete(ctx, actor.UserID, perr.AccountID); err != nil {
		log.Error("compensate account", zap.Error(err))
		ok = false
	}
	perr.Compensated = ok
	log.Warn("partial lead conversion", zap.Bool("compensated", ok), zap.Error(perr.Err))
	return perr
}

func (s *Service) report(ctx context.Context, actor session.Principal, leadID string, err error) {
	if err == nil {
		s.log.Info("lead converted", zap.String("lead_id", leadID), zap.String("user_id", actor.UserID))
		notify.Outcome(ctx, s.sink, actor.UserID, "convert", "lead", nil,
			notify.KeyLeads, notify.KeyAccounts, notify.KeyContacts, notify.KeyDashboard)
		return
	}
	notify.Outcome(ctx, s.sink, actor.UserID, "convert", "lead", err)

	var perr *PartialConversionError
	if errors.As(err, &perr) && !perr.Compensated {
		s.sink.Invalidate(ctx, actor.UserID, notify.KeyAccounts, notify.KeyContacts, notify.KeyDashboard)
	}
}

func accountFromLead(l *domain.Lead, actorID string) *domain.Account {
	a := &domain.Account{
		Name:          l.AccountName(),
		Type:          domain.AccountCustomer,
		Industry:      l.Industry,
		AnnualRevenue: l.AnnualRevenue,
		EmployeeCount: l.EmployeeCount,
		SourceLeadID:  &l.ID,
	}
	a.StampCreate(actorID)
	return a
}

func contactFromLead(l *domain.Lead, accountID, actorID string) *domain.Contact {
	c := &domain.Contact{
		AccountID:    &accountID,
		FirstName:    l.FirstName,
		LastName:     l.LastName,
		Email:        l.Email,
		Phone:        l.Phone,
		Title:        l.Title,
		LeadSource:   l.LeadSource,
		Status:       domain.ContactActive,
		SourceLeadID: &l.ID,
	}
	c.StampCreate(actorID)
	return c
}
