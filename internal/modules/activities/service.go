package activities

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"salescrm/internal/domain"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/pkg/filter"
	"salescrm/internal/pkg/patch"
	"salescrm/internal/pkg/validator"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.Activity, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Activity, error)
	Create(ctx context.Context, a *domain.Activity) error
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Activity, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Service struct {
	repo Repository
	sink notify.Sink
	log  *zap.Logger
}

func NewService(repo Repository, sink notify.Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, sink: sink, log: log.Named("activities")}
}

func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Activity, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(a *domain.Activity) bool {
		return filter.Matches(f.Q, a.Subject, domain.Deref(a.Description)) &&
			filter.Equals(f.Type, a.Type) &&
			filter.Equals(f.Status, a.Status)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Activity, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

func (s *Service) Create(ctx context.Context, p session.Principal, req CreateActivityRequest) (a *domain.Activity, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "create", err) }()

	req.Subject = strings.TrimSpace(req.Subject)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = domain.ActivityTask
	}
	if req.Status == "" {
		req.Status = domain.ActivityOpen
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityNormal
	}

	a = &domain.Activity{
		Type:          req.Type,
		Subject:       req.Subject,
		Description:   domain.Optional(req.Description),
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       due,
		Duration:      req.Duration,
		AccountID:     domain.Optional(req.AccountID),
		ContactID:     domain.Optional(req.ContactID),
		LeadID:        domain.Optional(req.LeadID),
		OpportunityID: domain.Optional(req.OpportunityID),
	}
	a.StampCreate(p.UserID)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.UserID, a.ID)
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateActivityRequest) (a *domain.Activity, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "update", err) }()

	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Subject != nil && strings.TrimSpace(*req.Subject) == "" {
		return nil, apperr.Invalid("subject", "required")
	}

	u := patch.New(p.UserID)
	if req.DueDate != nil {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		u["due_date"] = due
	}
	patch.Set(u, "type", req.Type)
	patch.Set(u, "subject", req.Subject)
	patch.Text(u, "description", req.Description)
	patch.Set(u, "status", req.Status)
	patch.Set(u, "priority", req.Priority)
	patch.Set(u, "duration", req.Duration)
	patch.Text(u, "account_id", req.AccountID)
	patch.Text(u, "contact_id", req.ContactID)
	patch.Text(u, "lead_id", req.LeadID)
	patch.Text(u, "opportunity_id", req.OpportunityID)
	return s.repo.Update(ctx, p.UserID, id, u)
}

func (s *Service) Delete(ctx context.Context, p session.Principal, id string) (err error) {
	if !p.Authenticated() {
		return apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "delete", err) }()
	return s.repo.Delete(ctx, p.UserID, id)
}

func (s *Service) report(ctx context.Context, p session.Principal, verb string, err error) {
	if err != nil {
		s.log.Debug(verb+" failed", zap.String("user_id", p.UserID), zap.Error(err))
	}
	notify.Outcome(ctx, s.sink, p.UserID, verb, "activity", err, notify.KeyActivities, notify.KeyDashboard)
}

// parseDueDate returns nil for a missing or blank value.
func parseDueDate(v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*v)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Invalid("due_date", "datetime")
}
