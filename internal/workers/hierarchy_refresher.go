package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type HierarchyReloader interface {
	Reload(ctx context.Context) error
}

// HierarchyRefresher reloads the location hierarchy from Postgres on a cron
// schedule so edits to the locations table reach every instance.
type HierarchyRefresher struct {
	reloader HierarchyReloader
	logger   *slog.Logger
	cron     *cron.Cron
	timeout  time.Duration
}

func NewHierarchyRefresher(reloader HierarchyReloader, spec string, logger *slog.Logger) (*HierarchyRefresher, error) {
	w := &HierarchyRefresher{
		reloader: reloader,
		logger:   logger,
		timeout:  30 * time.Second,
	}

	cl := cronLogger{logger: logger}
	w.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := w.cron.AddFunc(spec, func() { w.refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("workers.NewHierarchyRefresher: bad schedule %q: %w", spec, err)
	}
	return w, nil
}

// Run blocks until ctx is done, then waits for a running reload to finish.
func (w *HierarchyRefresher) Run(ctx context.Context) {
	w.cron.Start()
	w.logger.Info("hierarchy refresher started", slog.Int("jobs", len(w.cron.Entries())))

	<-ctx.Done()

	stopped := w.cron.Stop()
	<-stopped.Done()
	w.logger.Info("hierarchy refresher stopped")
}

func (w *HierarchyRefresher) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.reloader.Reload(ctx); err != nil {
		w.logger.Error("hierarchy reload failed", slog.Any("error", err))
		return
	}
	w.logger.Debug("hierarchy reloaded", slog.Duration("latency", time.Since(start)))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{slog.Any("error", err)}, keysAndValues...)...)
}
