package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type OpportunityRepository struct {
	db *DB
}

func NewOpportunityRepository(db *DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// List returns the owner's opportunities with account and contact embedded.
func (r *OpportunityRepository) List(ctx context.Context, ownerID string) ([]domain.Opportunity, error) {
	rows, err := listOwned[domain.Opportunity](ctx, r.db, "opportunities.list", ownerID)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OpportunityRepository) Get(ctx context.Context, ownerID, id string) (*domain.Opportunity, error) {
	o, err := getOwned[domain.Opportunity](ctx, r.db, "opportunities.get", ownerID, id)
	if err != nil {
		return nil, err
	}
	rows := []domain.Opportunity{*o}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *OpportunityRepository) attach(ctx context.Context, ownerID string, rows []domain.Opportunity) error {
	accountIDs := make([]*string, 0, len(rows))
	contactIDs := make([]*string, 0, len(rows))
	for i := range rows {
		accountIDs = append(accountIDs, &rows[i].AccountID)
		contactIDs = append(contactIDs, rows[i].ContactID)
	}
	accounts, err := accountRefs(ctx, r.db, ownerID, uniq(accountIDs))
	if err != nil {
		return err
	}
	contacts, err := contactRefs(ctx, r.db, ownerID, uniq(contactIDs))
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Account = accounts[rows[i].AccountID]
		if rows[i].ContactID != nil {
			rows[i].Contact = contacts[*rows[i].ContactID]
		}
	}
	return nil
}

func (r *OpportunityRepository) Create(ctx context.Context, o *domain.Opportunity) error {
	return apperr.Remote("opportunities.create", r.db.conn(ctx).Create(o).Error)
}

func (r *OpportunityRepository) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Opportunity, error) {
	if err := updateOwned[domain.Opportunity](ctx, r.db, "opportunities.update", ownerID, id, updates); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

func (r *OpportunityRepository) Delete(ctx context.Context, ownerID, id string) error {
	return deleteOwned[domain.Opportunity](ctx, r.db, "opportunities.delete", ownerID, id)
}
