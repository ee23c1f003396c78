package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

// WorkflowRepository scopes workflows by created_by; they carry no owner_id.
type WorkflowRepository struct {
	db *DB
}

func NewWorkflowRepository(db *DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) List(ctx context.Context, userID string) ([]domain.Workflow, error) {
	var rows []domain.Workflow
	err := r.db.conn(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Remote("workflows.list", err)
	}
	return rows, nil
}

func (r *WorkflowRepository) Get(ctx context.Context, userID, id string) (*domain.Workflow, error) {
	var w domain.Workflow
	err := r.db.conn(ctx).
		Where("id = ? AND created_by = ?", id, userID).
		First(&w).Error
	if err != nil {
		return nil, apperr.Remote("workflows.get", err)
	}
	return &w, nil
}

func (r *WorkflowRepository) Create(ctx context.Context, w *domain.Workflow) error {
	return apperr.Remote("workflows.create", r.db.conn(ctx).Create(w).Error)
}

func (r *WorkflowRepository) Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Workflow, error) {
	res := r.db.conn(ctx).Model(&domain.Workflow{}).
		Where("id = ? AND created_by = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, apperr.Remote("workflows.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *WorkflowRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.conn(ctx).
		Where("id = ? AND created_by = ?", id, userID).
		Delete(&domain.Workflow{})
	if res.Error != nil {
		return apperr.Remote("workflows.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
