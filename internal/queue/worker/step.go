package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/job"
	"github.com/geocoder89/taskhub/internal/jobs"
	"github.com/geocoder89/taskhub/internal/notifications"
)

// ProcessOne claims and runs a single job. It reports whether a job was
// claimed; job failures are recorded on the job, not returned.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.queue.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	w.stats.IncClaimed()
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)
	elapsed := time.Since(start)
	w.stats.ObserveDuration(elapsed)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observe(j.Type, result, elapsed)
		return true, nil
	}

	if err := w.queue.MarkDone(ctx, j.ID); err != nil {
		_ = w.queue.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.stats.IncDone()
	w.observe(j.Type, "done", elapsed)
	w.log.InfoContext(ctx, "job done", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts+1)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	switch p := payload.(type) {
	case jobs.MemberAddedPayload:
		return w.notifier.NotifyMemberAdded(ctx, notifications.MemberAddedInput{
			Email:         p.Email,
			UserID:        p.UserID,
			WorkspaceID:   p.WorkspaceID,
			WorkspaceName: p.WorkspaceName,
			Role:          p.Role,
			AddedBy:       p.AddedBy,
		})
	case jobs.TaskAssignedPayload:
		return w.notifier.NotifyTaskAssigned(ctx, notifications.TaskAssignedInput{
			Email:      p.Email,
			AssigneeID: p.AssigneeID,
			TaskID:     p.TaskID,
			TaskName:   p.TaskName,
			BoardID:    p.BoardID,
			AssignedBy: p.AssignedBy,
		})
	default:
		return fmt.Errorf("%w: unhandled job type %q", errPermanent, j.Type)
	}
}

var errPermanent = errors.New("permanent job failure")

// handleFailure reschedules the job with backoff, or marks it failed when
// the error is permanent or attempts are exhausted. It returns the result
// label for metrics.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	msg := cause.Error()
	nextAttempt := j.Attempts + 1

	if errors.Is(cause, errPermanent) || nextAttempt >= j.MaxAttempts {
		if err := w.queue.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.ErrorContext(ctx, "mark job failed", "job_id", j.ID, "err", err)
		}
		w.stats.IncFailed()
		w.stats.IncDeadLettered()
		w.log.ErrorContext(ctx, "job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", nextAttempt, "err", msg)
		return "failed"
	}

	runAt := time.Now().UTC().Add(w.backoff(j.Attempts))
	if err := w.queue.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.ErrorContext(ctx, "reschedule job", "job_id", j.ID, "err", err)
	}
	w.stats.IncRetried()
	w.log.WarnContext(ctx, "job retry scheduled", "job_id", j.ID, "type", j.Type, "attempt", nextAttempt, "run_at", runAt, "err", msg)
	return "retry"
}

func (w *Worker) observe(jobType, result string, d time.Duration) {
	if w.prom == nil {
		return
	}
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}
