package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) List(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	rows, err := listOwned[domain.Activity](ctx, r.db, "activities.list", ownerID)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent returns the owner's latest activities, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	var rows []domain.Activity
	err := owned(r.db.conn(ctx), ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Remote("activities.recent", err)
	}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ActivityRepository) Get(ctx context.Context, ownerID, id string) (*domain.Activity, error) {
	a, err := getOwned[domain.Activity](ctx, r.db, "activities.get", ownerID, id)
	if err != nil {
		return nil, err
	}
	rows := []domain.Activity{*a}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *ActivityRepository) attach(ctx context.Context, ownerID string, rows []domain.Activity) error {
	var accountIDs, contactIDs, leadIDs, oppIDs []*string
	for i := range rows {
		accountIDs = append(accountIDs, rows[i].AccountID)
		contactIDs = append(contactIDs, rows[i].ContactID)
		leadIDs = append(leadIDs, rows[i].LeadID)
		oppIDs = append(oppIDs, rows[i].OpportunityID)
	}

	accounts, err := accountRefs(ctx, r.db, ownerID, uniq(accountIDs))
	if err != nil {
		return err
	}
	contacts, err := contactRefs(ctx, r.db, ownerID, uniq(contactIDs))
	if err != nil {
		return err
	}
	leads, err := leadRefs(ctx, r.db, ownerID, uniq(leadIDs))
	if err != nil {
		return err
	}
	opps, err := opportunityRefs(ctx, r.db, ownerID, uniq(oppIDs))
	if err != nil {
		return err
	}

	for i := range rows {
		a := &rows[i]
		if a.AccountID != nil {
			a.Account = accounts[*a.AccountID]
		}
		if a.ContactID != nil {
			a.Contact = contacts[*a.ContactID]
		}
		if a.LeadID != nil {
			a.Lead = leads[*a.LeadID]
		}
		if a.OpportunityID != nil {
			a.Opportunity = opps[*a.OpportunityID]
		}
	}
	return nil
}

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	return apperr.Remote("activities.create", r.db.conn(ctx).Create(a).Error)
}

func (r *ActivityRepository) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Activity, error) {
	if err := updateOwned[domain.Activity](ctx, r.db, "activities.update", ownerID, id, updates); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

func (r *ActivityRepository) Delete(ctx context.Context, ownerID, id string) error {
	return deleteOwned[domain.Activity](ctx, r.db, "activities.delete", ownerID, id)
}
