package service

import (
	"context"
	"log/slog"
	"time"

	"washops/internal/domain"
)

// eventPublisher enqueues lifecycle events. A failed enqueue is logged and
// never fails the transition that produced it.
type eventPublisher struct {
	queue  EventQueue
	logger *slog.Logger
}

func (p eventPublisher) publish(ctx context.Context, kind domain.RequestEventKind, req *domain.EmergencyRequest, actorID string, at time.Time) {
	if p.queue == nil {
		return
	}
	ev := domain.RequestEvent{
		Kind:       kind,
		RequestID:  req.ID,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		ActorID:    actorID,
		City:       req.City,
		Area:       req.Area,
		At:         at,
	}
	if err := p.queue.Enqueue(ctx, ev); err != nil {
		p.logger.Error("enqueue request event failed",
			slog.String("kind", string(kind)),
			slog.String("request_id", req.ID.String()),
			slog.Any("error", err),
		)
		return
	}
	p.logger.Debug("request event enqueued", slog.String("kind", string(kind)), slog.String("request_id", req.ID.String()))
}
