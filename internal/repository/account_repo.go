package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) List(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return listOwned[domain.Account](ctx, r.db, "accounts.list", ownerID)
}

func (r *AccountRepository) Get(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return getOwned[domain.Account](ctx, r.db, "accounts.get", ownerID, id)
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return apperr.Remote("accounts.create", r.db.conn(ctx).Create(a).Error)
}

func (r *AccountRepository) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Account, error) {
	if err := updateOwned[domain.Account](ctx, r.db, "accounts.update", ownerID, id, updates, "source_lead_id"); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

func (r *AccountRepository) Delete(ctx context.Context, ownerID, id string) error {
	return deleteOwned[domain.Account](ctx, r.db, "accounts.delete", ownerID, id)
}

// Options returns the {id, name} picker list ordered by name.
func (r *AccountRepository) Options(ctx context.Context, ownerID string) ([]domain.AccountRef, error) {
	var refs []domain.AccountRef
	err := owned(r.db.conn(ctx).Model(&domain.Account{}), ownerID).
		Select("id", "name").
		Order("name").
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("accounts.options", err)
	}
	return refs, nil
}

// FromLeads returns accounts created by lead conversion, across all owners.
func (r *AccountRepository) FromLeads(ctx context.Context) ([]domain.Account, error) {
	var rows []domain.Account
	err := r.db.conn(ctx).
		Where("source_lead_id IS NOT NULL").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Remote("accounts.from_leads", err)
	}
	return rows, nil
}
