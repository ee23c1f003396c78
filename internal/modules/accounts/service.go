package accounts

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

const entity = "account"

type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.Account, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Account, error)
	Delete(ctx context.Context, ownerID, id string) error
	Options(ctx context.Context, ownerID string) ([]domain.AccountRef, error)
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
	return &Service{repo: repo, sink: sink, log: log.Named("accounts")}
}

func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Account, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(a *domain.Account) bool {
		return filter.Matches(f.Q, a.Name) && filter.Equals(f.Type, a.Type)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Account, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

// Options returns the {id, name} list used by account pickers.
func (s *Service) Options(ctx context.Context, p session.Principal) ([]domain.AccountRef, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Options(ctx, p.UserID)
}

func (s *Service) Create(ctx context.Context, p session.Principal, req CreateAccountRequest) (a *domain.Account, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "create", err) }()

	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = domain.AccountProspect
	}

	a = &domain.Account{
		Name:          req.Name,
		Type:          req.Type,
		Industry:      domain.Optional(req.Industry),
		Website:       domain.Optional(req.Website),
		Phone:         domain.Optional(req.Phone),
		Email:         domain.Optional(req.Email),
		AnnualRevenue: req.AnnualRevenue,
		EmployeeCount: req.EmployeeCount,
		Description:   domain.Optional(req.Description),
	}
	a.StampCreate(p.UserID)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateAccountRequest) (a *domain.Account, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "update", err) }()

	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Invalid("name", "required")
	}

	u := patch.New(p.UserID)
	patch.Set(u, "name", req.Name)
	patch.Set(u, "type", req.Type)
	patch.Text(u, "industry", req.Industry)
	patch.Text(u, "website", req.Website)
	patch.Text(u, "phone", req.Phone)
	patch.Text(u, "email", req.Email)
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
	notify.Outcome(ctx, s.sink, p.UserID, verb, entity, err, notify.KeyAccounts, notify.KeyDashboard)
}
