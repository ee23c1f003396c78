package repository

import (
	"context"
	"errors"
	"time"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

// ErrLeadConverted is returned by MarkConverted when the lead was already
// converted by someone else.
var ErrLeadConverted = errors.New("lead already converted")

// conversionColumns may only be written by MarkConverted.
var conversionColumns = []string{"converted", "converted_account_id", "converted_contact_id", "converted_at"}

type LeadRepository struct {
	db *DB
}

func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) List(ctx context.Context, ownerID string) ([]domain.Lead, error) {
	return listOwned[domain.Lead](ctx, r.db, "leads.list", ownerID)
}

func (r *LeadRepository) Get(ctx context.Context, ownerID, id string) (*domain.Lead, error) {
	return getOwned[domain.Lead](ctx, r.db, "leads.get", ownerID, id)
}

// GetByID loads a lead regardless of owner. Used by reconciliation only.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var l domain.Lead
	if err := r.db.conn(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, apperr.Remote("leads.get", err)
	}
	return &l, nil
}

// Create inserts a fresh, unconverted lead.
func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	l.Converted = false
	l.ConvertedAccountID = nil
	l.ConvertedContactID = nil
	l.ConvertedAt = nil
	return apperr.Remote("leads.create", r.db.conn(ctx).Create(l).Error)
}

func (r *LeadRepository) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Lead, error) {
	err := updateOwned[domain.Lead](ctx, r.db, "leads.update", ownerID, id, updates, conversionColumns...)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

// Delete removes a lead. The account and contact a converted lead produced
// outlive it: their source_lead_id is cleared so reconciliation does not
// take them for leftovers of a failed conversion.
func (r *LeadRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		lead, err := r.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if lead.Converted {
			if err := r.detach(ctx, &domain.Account{}, ownerID, id, lead.ConvertedAccountID); err != nil {
				return err
			}
			if err := r.detach(ctx, &domain.Contact{}, ownerID, id, lead.ConvertedContactID); err != nil {
				return err
			}
		}
		return deleteOwned[domain.Lead](ctx, r.db, "leads.delete", ownerID, id)
	})
}

func (r *LeadRepository) detach(ctx context.Context, model any, ownerID, leadID string, recordID *string) error {
	if recordID == nil {
		return nil
	}
	err := owned(r.db.conn(ctx).Model(model), ownerID).
		Where("id = ? AND source_lead_id = ?", *recordID, leadID).
		Update("source_lead_id", nil).Error
	return apperr.Remote("leads.delete.detach", err)
}

// MarkConverted flips an unconverted lead to converted. The update is
// conditional on converted = false; a lead that is already converted is
// left untouched and ErrLeadConverted is returned.
func (r *LeadRepository) MarkConverted(ctx context.Context, ownerID, id, accountID, contactID, actorID string, at time.Time) (*domain.Lead, error) {
	res := owned(r.db.conn(ctx).Model(&domain.Lead{}), ownerID).
		Where("id = ? AND converted = ?", id, false).
		Updates(map[string]any{
			"converted":            true,
			"converted_account_id": accountID,
			"converted_contact_id": contactID,
			"converted_at":         at,
			"updated_by":           actorID,
		})
	if res.Error != nil {
		return nil, apperr.Remote("leads.mark_converted", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, ownerID, id); err != nil {
			return nil, err
		}
		return nil, ErrLeadConverted
	}
	return r.Get(ctx, ownerID, id)
}
