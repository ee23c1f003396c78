package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type ContactRepository struct {
	db *DB
}

func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns the owner's contacts with their account embedded.
func (r *ContactRepository) List(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	rows, err := listOwned[domain.Contact](ctx, r.db, "contacts.list", ownerID)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContactRepository) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	c, err := getOwned[domain.Contact](ctx, r.db, "contacts.get", ownerID, id)
	if err != nil {
		return nil, err
	}
	rows := []domain.Contact{*c}
	if err := r.attach(ctx, ownerID, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *ContactRepository) attach(ctx context.Context, ownerID string, rows []domain.Contact) error {
	ids := make([]*string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].AccountID)
	}
	accounts, err := accountRefs(ctx, r.db, ownerID, uniq(ids))
	if err != nil {
		return err
	}
	for i := range rows {
		if rows[i].AccountID != nil {
			rows[i].Account = accounts[*rows[i].AccountID]
		}
	}
	return nil
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	return apperr.Remote("contacts.create", r.db.conn(ctx).Create(c).Error)
}

func (r *ContactRepository) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Contact, error) {
	if err := updateOwned[domain.Contact](ctx, r.db, "contacts.update", ownerID, id, updates, "source_lead_id"); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	return deleteOwned[domain.Contact](ctx, r.db, "contacts.delete", ownerID, id)
}

// Options returns the picker list ordered by first name.
func (r *ContactRepository) Options(ctx context.Context, ownerID string) ([]domain.ContactRef, error) {
	var refs []domain.ContactRef
	err := owned(r.db.conn(ctx).Model(&domain.Contact{}), ownerID).
		Select("id", "first_name", "last_name", "account_id").
		Order("first_name").
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("contacts.options", err)
	}
	return refs, nil
}

// FromLeads returns contacts created by lead conversion, across all owners.
func (r *ContactRepository) FromLeads(ctx context.Context) ([]domain.Contact, error) {
	var rows []domain.Contact
	err := r.db.conn(ctx).
		Where("source_lead_id IS NOT NULL").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Remote("contacts.from_leads", err)
	}
	return rows, nil
}
