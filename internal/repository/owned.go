package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

// Helpers shared by the owner-scoped entity repositories. Every read and
// write is filtered by owner_id.

func listOwned[T any](ctx context.Context, db *DB, op, ownerID string) ([]T, error) {
	var rows []T
	err := owned(db.conn(ctx), ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return rows, nil
}

func getOwned[T any](ctx context.Context, db *DB, op, ownerID, id string) (*T, error) {
	var row T
	err := owned(db.conn(ctx), ownerID).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return &row, nil
}

func updateOwned[T any](ctx context.Context, db *DB, op, ownerID, id string, updates map[string]any, omit ...string) error {
	q := owned(db.conn(ctx).Model(new(T)), ownerID).Where("id = ?", id)
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return apperr.Remote(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func deleteOwned[T any](ctx context.Context, db *DB, op, ownerID, id string) error {
	res := owned(db.conn(ctx), ownerID).
		Where("id = ?", id).
		Delete(new(T))
	if res.Error != nil {
		return apperr.Remote(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func accountRefs(ctx context.Context, db *DB, ownerID string, ids []string) (map[string]*domain.AccountRef, error) {
	out := make(map[string]*domain.AccountRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var refs []domain.AccountRef
	err := owned(db.conn(ctx).Model(&domain.Account{}), ownerID).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("accounts.refs", err)
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}

func contactRefs(ctx context.Context, db *DB, ownerID string, ids []string) (map[string]*domain.ContactRef, error) {
	out := make(map[string]*domain.ContactRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var refs []domain.ContactRef
	err := owned(db.conn(ctx).Model(&domain.Contact{}), ownerID).
		Select("id", "first_name", "last_name", "account_id").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("contacts.refs", err)
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}

func leadRefs(ctx context.Context, db *DB, ownerID string, ids []string) (map[string]*domain.LeadRef, error) {
	out := make(map[string]*domain.LeadRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var refs []domain.LeadRef
	err := owned(db.conn(ctx).Model(&domain.Lead{}), ownerID).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("leads.refs", err)
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}

func opportunityRefs(ctx context.Context, db *DB, ownerID string, ids []string) (map[string]*domain.OpportunityRef, error) {
	out := make(map[string]*domain.OpportunityRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var refs []domain.OpportunityRef
	err := owned(db.conn(ctx).Model(&domain.Opportunity{}), ownerID).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		return nil, apperr.Remote("opportunities.refs", err)
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}
