// Package dashboard serves the read-only summary of a user's pipeline.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"salescrm/internal/domain"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
)

const recentLimit = 5

type Repository interface {
	CountAccounts(ctx context.Context, ownerID string) (int64, error)
	CountContacts(ctx context.Context, ownerID string) (int64, error)
	CountLeads(ctx context.Context, ownerID string) (int64, error)
	CountOpportunities(ctx context.Context, ownerID string) (int64, error)
	TotalRevenue(ctx context.Context, ownerID string) (float64, error)
	StageTotals(ctx context.Context, ownerID string) ([]repository.StageTotal, error)
}

type ActivityReader interface {
	Recent(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error)
}

type Stats struct {
	Accounts      int64   `json:"accounts"`
	Contacts      int64   `json:"contacts"`
	Leads         int64   `json:"leads"`
	Opportunities int64   `json:"opportunities"`
	Revenue       float64 `json:"revenue"`
}

type Summary struct {
	Stats            Stats                   `json:"stats"`
	Stages           []repository.StageTotal `json:"stages"`
	RecentActivities []domain.Activity       `json:"recent_activities"`
}

type Service struct {
	repo       Repository
	activities ActivityReader
}

func NewService(repo Repository, activities ActivityReader) *Service {
	return &Service{repo: repo, activities: activities}
}

// Summary runs every query concurrently. The first failure cancels the rest.
func (s *Service) Summary(ctx context.Context, p session.Principal) (*Summary, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	owner := p.UserID
	var out Summary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Stats.Accounts, err = s.repo.CountAccounts(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Contacts, err = s.repo.CountContacts(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Leads, err = s.repo.CountLeads(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Opportunities, err = s.repo.CountOpportunities(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Revenue, err = s.repo.TotalRevenue(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.Stages, err = s.repo.StageTotals(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivities, err = s.activities.Recent(ctx, owner, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.Stages == nil {
		out.Stages = []repository.StageTotal{}
	}
	if out.RecentActivities == nil {
		out.RecentActivities = []domain.Activity{}
	}
	return &out, nil
}
