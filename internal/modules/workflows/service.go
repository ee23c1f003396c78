package workflows

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

// Repository scopes workflows by their creator.
type Repository interface {
	List(ctx context.Context, userID string) ([]domain.Workflow, error)
	Get(ctx context.Context, userID, id string) (*domain.Workflow, error)
	Create(ctx context.Context, w *domain.Workflow) error
	Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Workflow, error)
	Delete(ctx context.Context, userID, id string) error
}

// Service stores workflow definitions. Nothing here executes them.
type Service struct {
	repo Repository
	sink notify.Sink
	log  *zap.Logger
}

func NewService(repo Repository, sink notify.Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, sink: sink, log: log.Named("workflows")}
}

func (s *Service) List(ctx context.Context, p session.Principal, f ListFilter) ([]domain.Workflow, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	rows, err := s.repo.List(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, func(w *domain.Workflow) bool {
		return filter.Matches(f.Q, w.Name, domain.Deref(w.Description)) &&
			filter.Equals(f.EntityType, w.EntityType)
	}), nil
}

func (s *Service) Get(ctx context.Context, p session.Principal, id string) (*domain.Workflow, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	return s.repo.Get(ctx, p.UserID, id)
}

func (s *Service) Create(ctx context.Context, p session.Principal, req CreateWorkflowRequest) (w *domain.Workflow, err error) {
	if !p.Authenticated() {
		return nil, apperr.ErrAuthentication
	}
	defer func() { s.report(ctx, p, "create", err) }()

	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.TriggerType == "" {
		req.TriggerType = domain.TriggerManual
	}

	w = &domain.Workflow{
		Name:              req.Name,
		Description:       domain.Optional(req.Description),
		EntityType:        req.EntityType,
		TriggerType:       req.TriggerType,
		TriggerConditions: req.TriggerConditions,
		Actions:           req.Actions,
		IsActive:          req.IsActive,
		CreatedBy:         p.UserID,
		UpdatedBy:         domain.Str(p.UserID),
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) Update(ctx context.Context, p session.Principal, id string, req UpdateWorkflowRequest) (w *domain.Workflow, err error) {
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
	patch.Text(u, "description", req.Description)
	patch.Set(u, "entity_type", req.EntityType)
	patch.Set(u, "trigger_type", req.TriggerType)
	patch.Set(u, "trigger_conditions", req.TriggerConditions)
	patch.Set(u, "actions", req.Actions)
	patch.Set(u, "is_active", req.IsActive)
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
	notify.Outcome(ctx, s.sink, p.UserID, verb, "workflow", err, notify.KeyWorkflows)
}
