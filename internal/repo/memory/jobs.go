package memory

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/job"
)

// JobsRepo is the in-memory outbox. It supports the same claim/ack cycle as
// the Postgres one so a worker can drain it in process.
type JobsRepo struct {
	v view
}

func (r *JobsRepo) Enqueue(_ context.Context, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)
	err := r.v.write(func(st *state) error {
		if req.IdempotencyKey != nil {
			for _, existing := range st.jobs {
				if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *req.IdempotencyKey {
					j = existing
					return nil
				}
			}
		}
		st.jobs[j.ID] = j
		st.jobOrder = append(st.jobOrder, j.ID)
		return nil
	})
	return j, err
}

// List returns all jobs in enqueue order.
func (r *JobsRepo) List() []job.Job {
	var out []job.Job
	_ = r.v.read(func(st *state) error {
		for _, id := range st.jobOrder {
			out = append(out, st.jobs[id])
		}
		return nil
	})
	return out
}

func (r *JobsRepo) ClaimNext(_ context.Context, workerID string) (job.Job, error) {
	var out job.Job
	err := r.v.write(func(st *state) error {
		now := time.Now().UTC()
		for _, id := range st.jobOrder {
			j := st.jobs[id]
			if j.Status != job.StatusPending || j.RunAt.After(now) || j.Attempts >= j.MaxAttempts {
				continue
			}
			locker := workerID
			j.Status = job.StatusProcessing
			j.LockedAt = &now
			j.LockedBy = &locker
			j.UpdatedAt = now
			st.jobs[id] = j
			out = j
			return nil
		}
		return job.ErrJobNotFound
	})
	return out, err
}

func (r *JobsRepo) update(id string, fn func(j *job.Job)) error {
	return r.v.write(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return job.ErrJobNotFound
		}
		fn(&j)
		j.UpdatedAt = time.Now().UTC()
		st.jobs[id] = j
		return nil
	})
}

func (r *JobsRepo) MarkDone(_ context.Context, id string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusDone
		j.LockedAt, j.LockedBy, j.LastError = nil, nil, nil
	})
}

func (r *JobsRepo) MarkFailed(_ context.Context, id string, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.LockedAt, j.LockedBy = nil, nil
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) Reschedule(_ context.Context, id string, runAt time.Time, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.Attempts++
		j.RunAt = runAt
		j.LockedAt, j.LockedBy = nil, nil
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) RequeueStaleProcessing(_ context.Context, lockTTL time.Duration) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		cutoff := time.Now().UTC().Add(-lockTTL)
		for id, j := range st.jobs {
			if j.Status != job.StatusProcessing || j.LockedAt == nil || !j.LockedAt.Before(cutoff) {
				continue
			}
			j.Status = job.StatusPending
			j.LockedAt, j.LockedBy = nil, nil
			st.jobs[id] = j
			n++
		}
		return nil
	})
	return n, err
}
