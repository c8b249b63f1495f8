package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

// ReportRefresher is the slice of the report service the worker needs.
type ReportRefresher interface {
	Refresh(ctx context.Context) error
}

// Worker wraps the asynq server and the cron scheduler that keeps the
// sales report warm.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Logger      *slog.Logger
	Orders      service.OrderServiceInterface
	Reports     ReportRefresher
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskOrderFulfill, handleOrderFulfill(cfg.Orders))
	mux.HandleFunc(TaskReportRefresh, handleReportRefresh(cfg.Reports))

	scheduler := asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(ReportRefreshCronSpec, NewReportRefreshTask(), asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}

func handleOrderFulfill(orders service.OrderServiceInterface) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OrderFulfillPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			observability.RecordJobEvent(ctx, TaskOrderFulfill, "malformed")
			return asynq.SkipRetry
		}
		if err := orders.Fulfill(ctx, payload.OrderID); err != nil {
			// An order that is no longer paid (cancelled, already
			// fulfilled) will never become fulfillable; retrying is noise.
			if errors.Is(err, repository.ErrOrderNotFound) {
				observability.RecordJobEvent(ctx, TaskOrderFulfill, "skipped")
				return asynq.SkipRetry
			}
			observability.RecordJobEvent(ctx, TaskOrderFulfill, "error")
			return err
		}
		observability.RecordJobEvent(ctx, TaskOrderFulfill, "success")
		return nil
	}
}

func handleReportRefresh(reports ReportRefresher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := reports.Refresh(ctx); err != nil {
			observability.RecordJobEvent(ctx, TaskReportRefresh, "error")
			return err
		}
		observability.RecordJobEvent(ctx, TaskReportRefresh, "success")
		return nil
	}
}
