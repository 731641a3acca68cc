package service

import (
	"context"
	"errors"
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

// Coordinator assigns pending requests to eligible washers. The final write
// is conditional on the request still being Pending, so of two concurrent
// assigns exactly one wins.
type Coordinator struct {
	requests RequestRepository
	matcher  MatcherService
	resolver *scope.Resolver
	events   eventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewCoordinator(
	requests RequestRepository,
	matcher MatcherService,
	resolver *scope.Resolver,
	queue EventQueue,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		requests: requests,
		matcher:  matcher,
		resolver: resolver,
		events:   eventPublisher{queue: queue, logger: logger},
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) Assign(ctx context.Context, requestID uuid.UUID, workerID string, actor domain.Actor) (*domain.EmergencyRequest, error) {
	const op = "service.Coordinator.Assign"

	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, fmt.Errorf("%s: worker id required: %w", op, e.ErrInvalidInput)
	}

	req, err := c.loadPending(ctx, op, requestID, actor)
	if err != nil {
		return nil, err
	}

	workers, err := c.matcher.FindEligible(ctx, req.MatchArea())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !containsWorker(workers, workerID) {
		c.logger.Info("assign rejected: worker not eligible",
			slog.String("request_id", requestID.String()),
			slog.String("worker_id", workerID),
			slog.String("area", req.MatchArea()),
		)
		return nil, fmt.Errorf("%s: worker %s for %q: %w", op, workerID, req.MatchArea(), e.ErrWorkerNotEligible)
	}

	updated, err := lifecycle.Apply(*req, lifecycle.Assign(workerID), c.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.requests.UpdateIfStatus(ctx, &updated, domain.StatusPending); err != nil {
		if errors.Is(err, e.ErrConflict) {
			c.logger.Info("assign lost the race",
				slog.String("request_id", requestID.String()),
				slog.String("worker_id", workerID),
			)
			return nil, fmt.Errorf("%s: %w", op, e.ErrAlreadyAssigned)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.logger.Info("request assigned",
		slog.String("request_id", requestID.String()),
		slog.String("worker_id", workerID),
		slog.String("actor_id", actor.ID),
	)
	c.events.publish(ctx, domain.EventAssigned, &updated, actor.ID, updated.UpdatedAt)
	return &updated, nil
}

// Candidates runs the same checks as Assign up to the matcher and returns the
// eligible washers. An empty result is reported as e.ErrNoEligibleWorkers
// alongside the empty slice.
func (c *Coordinator) Candidates(ctx context.Context, requestID uuid.UUID, actor domain.Actor) ([]domain.Worker, error) {
	const op = "service.Coordinator.Candidates"

	req, err := c.loadPending(ctx, op, requestID, actor)
	if err != nil {
		return nil, err
	}

	workers, err := c.matcher.FindEligible(ctx, req.MatchArea())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(workers) == 0 {
		return []domain.Worker{}, fmt.Errorf("%s: area %q: %w", op, req.MatchArea(), e.ErrNoEligibleWorkers)
	}
	return workers, nil
}

// loadPending loads the request and checks, in order, that it is Pending,
// that the actor may assign, and that the request lies in the actor's scope.
func (c *Coordinator) loadPending(ctx context.Context, op string, requestID uuid.UUID, actor domain.Actor) (*domain.EmergencyRequest, error) {
	req, err := c.requests.Get(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := lifecycle.Next(req.Status, lifecycle.Assign("")); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.IsSupervisor() {
		return nil, fmt.Errorf("%s: role %s cannot assign: %w", op, actor.Role, e.ErrForbidden)
	}
	if !scope.Covers(c.resolver.Resolve(actor), req) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrOutOfScope)
	}
	return req, nil
}

func containsWorker(ws []domain.Worker, id string) bool {
	for _, w := range ws {
		if w.ID == id {
			return true
		}
	}
	return false
}
