package contacts

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
	List(ctx context.Context, ownerID string) ([]domain.Contact, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Contact, error)
	Create(ctx context.Context, c *domain.Contact) error
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
	Options(ctx context.Context, ownerID string) ([]domain.ContactRef, error)
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
	return &Service{repo: repo, sink: sink, log: log.Named("contacts")}
}

// List returns the caller's contacts with their account embedded. q
// matches the full name, the email or the account name.
func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Contact, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(c *domain.Contact) bool {
		var account string
		if c.Account != nil {
			account = c.Account.Name
		}
		return filter.Matches(f.Q, c.FullName(), domain.Deref(c.Email), account) &&
			filter.Equals(f.Status, c.Status)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Contact, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

func (s *Service) Options(ctx context.Context, p session.Principal) ([]domain.ContactRef, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Options(ctx, p.UserID)
}

func (s *Service) Create(ctx context.Context, p session.Principal, req CreateContactRequest) (c *domain.Contact, err error) {
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
		req.Status = domain.ContactActive
	}

	c = &domain.Contact{
		AccountID:  domain.Optional(req.AccountID),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      domain.Optional(req.Email),
		Phone:      domain.Optional(req.Phone),
		Mobile:     domain.Optional(req.Mobile),
		Title:      domain.Optional(req.Title),
		Department: domain.Optional(req.Department),
		Status:     req.Status,
		LeadSource: domain.Optional(req.LeadSource),
	}
	c.StampCreate(p.UserID)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.UserID, c.ID)
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateContactRequest) (c *domain.Contact, err error) {
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
	patch.Text(u, "account_id", req.AccountID)
	patch.Set(u, "first_name", req.FirstName)
	patch.Set(u, "last_name", req.LastName)
	patch.Text(u, "email", req.Email)
	patch.Text(u, "phone", req.Phone)
	patch.Text(u, "mobile", req.Mobile)
	patch.Text(u, "title", req.Title)
	patch.Text(u, "department", req.Department)
	patch.Set(u, "status", req.Status)
	patch.Text(u, "lead_source", req.LeadSource)
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
	notify.Outcome(ctx, s.sink, p.UserID, verb, "contact", err, notify.KeyContacts, notify.KeyDashboard)
}
