package system

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"washops/internal/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStats reports the backlog of undelivered request events.
type QueueStats interface {
	Len(ctx context.Context) (int64, error)
}

type Handler struct {
	logger  *slog.Logger
	checks  map[string]Pinger
	queue   QueueStats
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Pinger, queue QueueStats) *Handler {
	return &Handler{
		logger:  logger,
		checks:  checks,
		queue:   queue,
		timeout: 2 * time.Second,
	}
}

type Health struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	QueuedEvents *int64            `json:"queuedEvents,omitempty"`
}

func (h *Handler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	out := Health{Status: "ok", Checks: make(map[string]string, len(h.checks))}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("health check failed", slog.String("check", name), slog.Any("error", err))
			out.Checks[name] = "down"
			out.Status = "degraded"
			continue
		}
		out.Checks[name] = "up"
	}

	if h.queue != nil {
		if n, err := h.queue.Len(ctx); err == nil {
			out.QueuedEvents = &n
		}
	}

	status := http.StatusOK
	if out.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	render.OK(w, status, out)
}
