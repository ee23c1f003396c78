package conversion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type OrphanReason string

const (
	LeadMissing      OrphanReason = "lead_missing"
	LeadNotConverted OrphanReason = "lead_not_converted"
	LeadPointsElse   OrphanReason = "lead_converted_to_other_records"
)

// Orphan is an account or contact created from a lead that does not
// reference it back.
type Orphan struct {
	Kind    string       `json:"kind"`
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	OwnerID string       `json:"owner_id"`
	LeadID  string       `json:"lead_id"`
	Reason  OrphanReason `json:"reason"`
}

type LeadFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
}

type AccountSource interface {
	FromLeads(ctx context.Context) ([]domain.Account, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type ContactSource interface {
	FromLeads(ctx context.Context) ([]domain.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Reconciler finds records left behind by partial sequential conversions.
// Records younger than MinAge are skipped so that conversions still in
// progress are not reported.
type Reconciler struct {
	leads    LeadFinder
	accounts AccountSource
	contacts ContactSource
	MinAge   time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewReconciler(leads LeadFinder, accounts AccountSource, contacts ContactSource, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		leads:    leads,
		accounts: accounts,
		contacts: contacts,
		now:      time.Now,
		log:      log.Named("reconciler"),
	}
}

func (r *Reconciler) Scan(ctx context.Context) ([]Orphan, error) {
	cutoff := r.now().Add(-r.MinAge)
	leads := make(map[string]*domain.Lead)
	lookup := func(id string) (*domain.Lead, error) {
		if l, ok := leads[id]; ok {
			return l, nil
		}
		l, err := r.leads.GetByID(ctx, id)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		leads[id] = l
		return l, nil
	}

	var out []Orphan

	accounts, err := r.accounts.FromLeads(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.CreatedAt.After(cutoff) {
			continue
		}
		l, err := lookup(*a.SourceLeadID)
		if err != nil {
			return nil, err
		}
		if reason, bad := orphaned(l, l != nil && domain.Deref(l.ConvertedAccountID) == a.ID); bad {
			out = append(out, Orphan{Kind: "account", ID: a.ID, Name: a.Name, OwnerID: a.OwnerID, LeadID: *a.SourceLeadID, Reason: reason})
		}
	}

	contacts, err := r.contacts.FromLeads(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c.CreatedAt.After(cutoff) {
			continue
		}
		l, err := lookup(*c.SourceLeadID)
		if err != nil {
			return nil, err
		}
		if reason, bad := orphaned(l, l != nil && domain.Deref(l.ConvertedContactID) == c.ID); bad {
			out = append(out, Orphan{Kind: "contact", ID: c.ID, Name: c.FullName(), OwnerID: c.OwnerID, LeadID: *c.SourceLeadID, Reason: reason})
		}
	}

	r.log.Info("scan finished", zap.Int("accounts", len(accounts)), zap.Int("contacts", len(contacts)), zap.Int("orphans", len(out)))
	return out, nil
}

func orphaned(l *domain.Lead, linked bool) (OrphanReason, bool) {
	switch {
	case l == nil:
		return LeadMissing, true
	case !l.Converted:
		return LeadNotConverted, true
	case !linked:
		return LeadPointsElse, true
	}
	return "", false
}

// Fix deletes the orphans, contacts before accounts. It stops at the first
// failure and returns how many were deleted.
func (r *Reconciler) Fix(ctx context.Context, orphans []Orphan) (int, error) {
	deleted := 0
	for _, kind := range []string{"contact", "account"} {
		for _, o := range orphans {
			if o.Kind != kind {
				continue
			}
			var err error
			if kind == "contact" {
				err = r.contacts.Delete(ctx, o.OwnerID, o.ID)
			} else {
				err = r.accounts.Delete(ctx, o.OwnerID, o.ID)
			}
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return deleted, err
			}
			deleted++
			r.log.Info("orphan deleted", zap.String("kind", o.Kind), zap.String("id", o.ID), zap.String("reason", string(o.Reason)))
		}
	}
	return deleted, nil
}
