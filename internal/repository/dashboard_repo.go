package repository

import (
	"context"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

// StageTotal is one row of the per-stage opportunity breakdown.
type StageTotal struct {
	Stage domain.OpportunityStage `json:"stage"`
	Count int64                   `json:"count"`
	Value float64                 `json:"value"`
}

type DashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) count(ctx context.Context, model any, op, ownerID string) (int64, error) {
	var n int64
	if err := owned(r.db.conn(ctx).Model(model), ownerID).Count(&n).Error; err != nil {
		return 0, apperr.Remote(op, err)
	}
	return n, nil
}

func (r *DashboardRepository) CountAccounts(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, &domain.Account{}, "dashboard.accounts", ownerID)
}

func (r *DashboardRepository) CountContacts(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, &domain.Contact{}, "dashboard.contacts", ownerID)
}

func (r *DashboardRepository) CountLeads(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, &domain.Lead{}, "dashboard.leads", ownerID)
}

func (r *DashboardRepository) CountOpportunities(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, &domain.Opportunity{}, "dashboard.opportunities", ownerID)
}

// TotalRevenue sums opportunity amounts; missing amounts count as zero.
func (r *DashboardRepository) TotalRevenue(ctx context.Context, ownerID string) (float64, error) {
	var total float64
	err := owned(r.db.conn(ctx).Model(&domain.Opportunity{}), ownerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Remote("dashboard.revenue", err)
	}
	return total, nil
}

func (r *DashboardRepository) StageTotals(ctx context.Context, ownerID string) ([]StageTotal, error) {
	var rows []StageTotal
	err := owned(r.db.conn(ctx).Model(&domain.Opportunity{}), ownerID).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS value").
		Group("stage").
		Order("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Remote("dashboard.stages", err)
	}
	return rows, nil
}
