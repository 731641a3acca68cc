package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"washops/internal/config"
	"washops/internal/domain"
	"washops/pkg/e"
)

// EventSender drains the request event queue and POSTs each event to the
// configured webhook with a bounded number of attempts.
type EventSender struct {
	logger     *slog.Logger
	cfg        config.WebhookConfig
	source     EventSource
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	popTimeout time.Duration
}

func NewEventSender(logger *slog.Logger, cfg config.WebhookConfig, source EventSource) *EventSender {
	return &EventSender{
		logger:     logger,
		cfg:        cfg,
		source:     source,
		http:       &http.Client{Timeout: 5 * time.Second},
		maxRetries: 3,
		backoff:    time.Second,
		popTimeout: 5 * time.Second,
	}
}

func (s *EventSender) Run(ctx context.Context) {
	if s.cfg.Disabled {
		s.logger.Warn("event sender disabled")
		return
	}
	s.logger.Info("event sender started", slog.String("url", s.cfg.URL))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("event sender stopped", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		ev, err := s.source.BRPop(ctx, s.popTimeout)
		if err != nil {
			if errors.Is(err, e.ErrEventQueueEmpty) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("event queue pop failed", slog.Any("error", err))
			sleepCtx(ctx, 500*time.Millisecond)
			continue
		}

		s.logger.Debug("sending event", slog.String("kind", string(ev.Kind)), slog.String("request_id", ev.RequestID.String()))
		s.send(ctx, ev)
	}
}

// send reports whether the webhook accepted the event.
func (s *EventSender) send(ctx context.Context, ev domain.RequestEvent) bool {
	body, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("marshal event failed", slog.String("error", err.Error()))
		return false
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("create webhook request failed", slog.String("error", err.Error()))
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Kind", string(ev.Kind))

		resp, err := s.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return true
		}

		var reason string
		if err != nil {
			reason = err.Error()
		} else {
			reason = resp.Status
			_ = resp.Body.Close()
		}
		s.logger.Warn("webhook failed",
			slog.Int("attempt", attempt),
			slog.String("request_id", ev.RequestID.String()),
			slog.String("reason", reason),
		)
		if attempt < s.maxRetries {
			sleepCtx(ctx, time.Duration(attempt)*s.backoff)
		}
	}
	s.logger.Error("webhook gave up", slog.String("request_id", ev.RequestID.String()), slog.String("kind", string(ev.Kind)))
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
