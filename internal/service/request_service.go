package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"washops/internal/domain"
	"washops/internal/lifecycle"
	"washops/internal/scope"
	"washops/pkg/e"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Requests drives emergency requests through the lifecycle. Every persisted
// transition is a conditional write keyed on the status it was computed from.
type Requests struct {
	repo      RequestRepository
	assigner  AssignmentService
	matcher   MatcherService
	resolver  *scope.Resolver
	hierarchy scope.HierarchyProvider
	events    eventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewRequests(
	repo RequestRepository,
	assigner AssignmentService,
	matcher MatcherService,
	resolver *scope.Resolver,
	hierarchy scope.HierarchyProvider,
	queue EventQueue,
	logger *slog.Logger,
) *Requests {
	return &Requests{
		repo:      repo,
		assigner:  assigner,
		matcher:   matcher,
		resolver:  resolver,
		hierarchy: hierarchy,
		events:    eventPublisher{queue: queue, logger: logger},
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Requests) Create(ctx context.Context, actor domain.Actor, in domain.CreateEmergencyRequest) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Create"

	if actor.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("%s: only customers raise requests: %w", op, e.ErrForbidden)
	}
	if len(in.BeforeImages) > domain.MaxImages {
		return nil, fmt.Errorf("%s: at most %d images: %w", op, domain.MaxImages, e.ErrInvalidInput)
	}

	area := in.AreaFields.Value()
	city := domain.CanonicalArea(in.City)
	if city == "" && area != "" && s.hierarchy != nil {
		if parent, ok := s.hierarchy.Current().CityOf(area); ok {
			city = parent
		}
	}
	if city == "" && area == "" {
		return nil, fmt.Errorf("%s: city or area required: %w", op, e.ErrInvalidInput)
	}

	now := s.now()
	req := &domain.EmergencyRequest{
		ID:           uuid.New(),
		CustomerID:   actor.ID,
		Address:      strings.TrimSpace(in.Address),
		City:         city,
		Area:         area,
		CarModel:     strings.TrimSpace(in.CarModel),
		CarPlate:     strings.ToUpper(strings.TrimSpace(in.CarPlate)),
		Description:  strings.TrimSpace(in.Description),
		Status:       domain.StatusPending,
		BeforeImages: append([]string(nil), in.BeforeImages...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("request created",
		slog.String("request_id", req.ID.String()),
		slog.String("customer_id", actor.ID),
		slog.String("area", req.MatchArea()),
	)
	s.events.publish(ctx, domain.EventCreated, req, actor.ID, now)
	return req, nil
}

func (s *Requests) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Get"

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.visible(actor, req) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrOutOfScope)
	}
	return req, nil
}

func (s *Requests) List(ctx context.Context, actor domain.Actor, f domain.ListRequestsFilter) (domain.ListRequestsResponse, error) {
	const op = "service.Requests.List"

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	all, err := s.repo.List(ctx, f.Status)
	if err != nil {
		return domain.ListRequestsResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	visible := scope.Filter(s.resolver.Resolve(actor), all)

	resp := domain.ListRequestsResponse{
		Requests: []domain.EmergencyRequest{},
		Page:     page,
		Limit:    limit,
		Total:    len(visible),
	}
	start := (page - 1) * limit
	if start < len(visible) {
		end := start + limit
		if end > len(visible) {
			end = len(visible)
		}
		resp.Requests = visible[start:end]
	}
	return resp, nil
}

// WasherQueue lists the requests currently assigned to the calling washer.
func (s *Requests) WasherQueue(ctx context.Context, actor domain.Actor) ([]domain.EmergencyRequest, error) {
	const op = "service.Requests.WasherQueue"

	if actor.Role != domain.RoleEmployee {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	reqs, err := s.repo.ListByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reqs, nil
}

func (s *Requests) Start(ctx context.Context, actor domain.Actor, id uuid.UUID, beforeImages []string) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Start"

	req, err := s.loadForWorker(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, op, actor, req, lifecycle.Start(beforeImages), domain.EventStarted)
}

func (s *Requests) Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, afterImages []string) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Complete"

	req, err := s.loadForWorker(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, op, actor, req, lifecycle.Complete(afterImages), domain.EventCompleted)
}

func (s *Requests) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Cancel"

	req, err := s.loadForSupervisor(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, op, actor, req, lifecycle.Cancel(), domain.EventCancelled)
}

// Update applies the transition selected by body.Status. Regular transitions
// go through their dedicated paths; anything else is a supervisor override.
func (s *Requests) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, body domain.UpdateRequestBody) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Update"

	target, ok := domain.ParseRequestStatus(body.Status)
	if !ok {
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, body.Status, e.ErrInvalidInput)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case target == domain.StatusAssigned && current.Status == domain.StatusPending && body.AssignedTo != nil:
		return s.assigner.Assign(ctx, id, *body.AssignedTo, actor)
	case target == domain.StatusInProgress && current.Status == domain.StatusAssigned && body.AssignedTo == nil:
		return s.Start(ctx, actor, id, body.BeforeImages)
	case target == domain.StatusCompleted && current.Status == domain.StatusInProgress && body.AssignedTo == nil:
		return s.Complete(ctx, actor, id, body.AfterImages)
	case target == domain.StatusCancelled:
		return s.Cancel(ctx, actor, id)
	}
	return s.override(ctx, actor, id, target, body)
}

func (s *Requests) override(ctx context.Context, actor domain.Actor, id uuid.UUID, target domain.RequestStatus, body domain.UpdateRequestBody) (*domain.EmergencyRequest, error) {
	const op = "service.Requests.Override"

	req, err := s.loadForSupervisor(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}

	var assignee string
	if body.AssignedTo != nil {
		assignee = strings.TrimSpace(*body.AssignedTo)
	}
	if assignee != "" && assignee != req.AssignedWorker() {
		workers, err := s.matcher.FindEligible(ctx, req.MatchArea())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !containsWorker(workers, assignee) {
			return nil, fmt.Errorf("%s: worker %s: %w", op, assignee, e.ErrWorkerNotEligible)
		}
	}

	ev := lifecycle.SetStatus(target, assignee, body.BeforeImages, body.AfterImages)
	return s.transition(ctx, op, actor, req, ev, domain.EventOverride)
}

func (s *Requests) transition(
	ctx context.Context,
	op string,
	actor domain.Actor,
	req *domain.EmergencyRequest,
	ev lifecycle.Event,
	kind domain.RequestEventKind,
) (*domain.EmergencyRequest, error) {
	from := req.Status
	updated, err := lifecycle.Apply(*req, ev, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateIfStatus(ctx, &updated, from); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("request transition",
		slog.String("request_id", updated.ID.String()),
		slog.String("event", ev.Kind.String()),
		slog.String("from", string(from)),
		slog.String("to", string(updated.Status)),
		slog.String("actor_id", actor.ID),
	)
	s.events.publish(ctx, kind, &updated, actor.ID, updated.UpdatedAt)
	return &updated, nil
}

// loadForWorker admits the assigned washer, or a supervisor whose scope
// covers the request.
func (s *Requests) loadForWorker(ctx context.Context, op string, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if assignee := req.AssignedWorker(); assignee != "" && assignee == actor.ID {
		return req, nil
	}
	if err := s.checkSupervisor(actor, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

func (s *Requests) loadForSupervisor(ctx context.Context, op string, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkSupervisor(actor, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

func (s *Requests) checkSupervisor(actor domain.Actor, req *domain.EmergencyRequest) error {
	if !scope.Covers(s.resolver.Resolve(actor), req) {
		return e.ErrOutOfScope
	}
	if !actor.IsSupervisor() {
		return e.ErrForbidden
	}
	return nil
}

func (s *Requests) visible(actor domain.Actor, req *domain.EmergencyRequest) bool {
	if assignee := req.AssignedWorker(); assignee != "" && assignee == actor.ID {
		return true
	}
	return scope.Covers(s.resolver.Resolve(actor), req)
}
