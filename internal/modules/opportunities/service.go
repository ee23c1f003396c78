package opportunities

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

const defaultProbability = 10

type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.Opportunity, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Opportunity, error)
	Create(ctx context.Context, o *domain.Opportunity) error
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Opportunity, error)
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
	return &Service{repo: repo, sink: sink, log: log.Named("opportunities")}
}

func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Opportunity, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(o *domain.Opportunity) bool {
		var account string
		if o.Account != nil {
			account = o.Account.Name
		}
		return filter.Matches(f.Q, o.Name, account) && filter.Equals(f.Stage, o.Stage)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Opportunity, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

func (s *Service) Create(ctx context.Context, p session.Principal, req CreateOpportunityRequest) (o *domain.Opportunity, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "create", err) }()

	req.Name = strings.TrimSpace(req.Name)
	req.AccountID = strings.TrimSpace(req.AccountID)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Stage == "" {
		req.Stage = domain.StageQualification
	}
	probability := defaultProbability
	if req.Probability != nil {
		probability = *req.Probability
	}

	o = &domain.Opportunity{
		Name:        req.Name,
		AccountID:   req.AccountID,
		ContactID:   domain.Optional(req.ContactID),
		Amount:      req.Amount,
		Stage:       req.Stage,
		Probability: probability,
		CloseDate:   domain.Optional(req.CloseDate),
		LeadSource:  domain.Optional(req.LeadSource),
		Description: domain.Optional(req.Description),
		Competitor:  domain.Optional(req.Competitor),
		NextStep:    domain.Optional(req.NextStep),
	}
	o.StampCreate(p.UserID)
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.UserID, o.ID)
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateOpportunityRequest) (o *domain.Opportunity, err error) {
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
	if req.AccountID != nil && strings.TrimSpace(*req.AccountID) == "" {
		return nil, apperr.Invalid("account_id", "required")
	}

	u := patch.New(p.UserID)
	patch.Set(u, "name", req.Name)
	patch.Set(u, "account_id", req.AccountID)
	patch.Text(u, "contact_id", req.ContactID)
	patch.Set(u, "amount", req.Amount)
	patch.Set(u, "stage", req.Stage)
	patch.Set(u, "probability", req.Probability)
	patch.Text(u, "close_date", req.CloseDate)
	patch.Text(u, "lead_source", req.LeadSource)
	patch.Text(u, "description", req.Description)
	patch.Text(u, "competitor", req.Competitor)
	patch.Text(u, "next_step", req.NextStep)
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
	notify.Outcome(ctx, s.sink, p.UserID, verb, "opportunity", err, notify.KeyOpportunities, notify.KeyDashboard)
}
