package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/job"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Queue is the outbox as seen by a worker.
type Queue interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
	LockTTL       time.Duration
}

type Worker struct {
	cfg      Config
	queue    Queue
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
	stats    *observability.JobStats
	backoff  func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, queue Queue, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom, stats *observability.JobStats) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	if cfg.WorkerID == "" {
		cfg.WorkerID = "taskhub-worker"
	}
	if log == nil {
		log = slog.Default()
	}
	if stats == nil {
		stats = observability.NewJobStats()
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		log:      log,
		prom:     prom,
		stats:    stats,
		backoff:  ExponentialBackoff,
	}
}

// Run polls the outbox with cfg.Concurrency loops until ctx is cancelled.
// In-flight jobs get cfg.ShutdownGrace to finish on their own context.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	jobCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJobs()

	g := new(errgroup.Group)

	for i := 0; i < w.cfg.Concurrency; i++ {
		g.Go(func() error {
			w.loop(ctx, jobCtx)
			return nil
		})
	}

	g.Go(func() error {
		w.janitor(ctx)
		return nil
	})

	w.log.Info("worker started", "worker_id", w.cfg.WorkerID, "concurrency", w.cfg.Concurrency)

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Warn("shutdown grace elapsed, cancelling in-flight jobs")
		cancelJobs()
		<-done
	}
	return nil
}

func (w *Worker) loop(stop, jobCtx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop.Done():
			return
		case <-ticker.C:
		}

		// drain while there is work
		for {
			if stop.Err() != nil {
				return
			}
			processed, err := w.ProcessOne(jobCtx)
			if err != nil {
				w.log.Error("process job", "err", err)
			}
			if !processed {
				break
			}
		}
	}
}

func (w *Worker) janitor(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.queue.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("requeue stale jobs", "err", err)
				continue
			}
			if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) Stats() observability.JobStatsSnapshot {
	return w.stats.Snapshot()
}
