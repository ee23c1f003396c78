package leads

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"salescrm/internal/domain"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/pkg/filter"
	"salescrm/internal/pkg/patch"
	"salescrm/internal/pkg/validator"
)

type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.Lead, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Lead, error)
	Create(ctx context.Context, l *domain.Lead) error
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Lead, error)
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
	return &Service{repo: repo, sink: sink, log: log.Named("leads")}
}

func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Lead, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(l *domain.Lead) bool {
		return filter.Matches(f.Q, l.FullName(), domain.Deref(l.Email), domain.Deref(l.Company)) &&
			filter.Equals(f.Status, l.Status) &&
			filter.Equals(f.Rating, l.Rating)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Lead, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

// Create stores a new unconverted lead. Status defaults to new and rating
// to warm.
func (s *Service) Create(ctx context.Context, p session.Principal, req CreateLeadRequest) (l *domain.Lead, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "create", err) }()

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.LeadNew
	}
	if req.Rating == "" {
		req.Rating = domain.RatingWarm
	}

	l = &domain.Lead{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Company:       domain.Optional(req.Company),
		Email:         domain.Optional(req.Email),
		Phone:         domain.Optional(req.Phone),
		Title:         domain.Optional(req.Title),
		LeadSource:    domain.Optional(req.LeadSource),
		Status:        req.Status,
		Rating:        req.Rating,
		Industry:      domain.Optional(req.Industry),
		AnnualRevenue: req.AnnualRevenue,
		EmployeeCount: req.EmployeeCount,
		Description:   domain.Optional(req.Description),
	}
	l.StampCreate(p.UserID)
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateLeadRequest) (l *domain.Lead, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "update", err) }()

	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		return nil, apperr.Invalid("first_name", "required")
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) == "" {
		return nil, apperr.Invalid("last_name", "required")
	}

	u := patch.New(p.UserID)
	patch.Set(u, "first_name", req.FirstName)
	patch.Set(u, "last_name", req.LastName)
	patch.Text(u, "company", req.Company)
	patch.Text(u, "email", req.Email)
	patch.Text(u, "phone", req.Phone)
	patch.Text(u, "title", req.Title)
	patch.Text(u, "lead_source", req.LeadSource)
	patch.Set(u, "status", req.Status)
	patch.Set(u, "rating", req.Rating)
	patch.Text(u, "industry", req.Industry)
	patch.Set(u, "annual_revenue", req.AnnualRevenue)
	patch.Set(u, "employee_count", req.EmployeeCount)
	patch.Text(u, "description", req.Description)
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
	notify.Outcome(ctx, s.sink, p.UserID, verb, "lead", err, notify.KeyLeads, notify.KeyDashboard)
}
