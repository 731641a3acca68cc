package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"washops/internal/components"
	"washops/internal/config"
)

func Run() error {
	bootCtx, cancelBoot := context.WithCancel(context.Background())
	defer cancelBoot()

	cfg, err := config.Load(bootCtx)
	if err != nil {
		components.SetupLogger("local").Error("load config failed", "err", err)
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	comps, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", "err", err)
		return err
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quitChan)

	err = supervise(ctx, logger, quitChan,
		task{name: "http server", critical: true, run: comps.HttpServer.Run},
		task{name: "event sender", run: func(ctx context.Context) error {
			comps.EventSender.Run(ctx)
			return nil
		}},
		task{name: "hierarchy refresher", run: func(ctx context.Context) error {
			comps.Refresher.Run(ctx)
			return nil
		}},
	)

	logger.Info("shutting down the services...")
	comps.ShutdownAll()
	logger.Info("gracefully shut down")

	return err
}

type task struct {
	name     string
	run      func(ctx context.Context) error
	critical bool
}

// supervise runs every task until a signal arrives or a critical task fails,
// then cancels the rest and waits for them. It returns the first critical error.
func supervise(ctx context.Context, logger *slog.Logger, quit <-chan os.Signal, tasks ...task) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		failure  error
		failedBy string
	)

	wg.Add(len(tasks))
	for _, t := range tasks {
		go func(t task) {
			defer wg.Done()
			err := t.run(ctx)
			if err != nil {
				logger.Error(t.name+" failed", "err", err)
			}
			logger.Info(t.name + " stopped")
			if err != nil && t.critical {
				once.Do(func() {
					failure = err
					failedBy = t.name
				})
				stop()
			}
		}(t)
	}

	select {
	case sig := <-quit:
		logger.Info("captured signal, initiating shutdown", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context done, initiating shutdown", "reason", context.Cause(ctx).Error())
	}

	stop()
	wg.Wait()

	if failure != nil {
		logger.Error("shutdown caused by failed task", "task", failedBy)
	}
	return failure
}
