package observability

import (
	"sync/atomic"
	"time"
)

// JobStats keeps in-process counters for the worker's /stats endpoint. The
// Prometheus series carry the same information for scraping.
type JobStats struct {
	claimed      atomic.Uint64
	done         atomic.Uint64
	failed       atomic.Uint64
	retried      atomic.Uint64
	deadLettered atomic.Uint64

	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewJobStats() *JobStats {
	return &JobStats{}
}

func (m *JobStats) IncClaimed()      { m.claimed.Add(1) }
func (m *JobStats) IncDone()         { m.done.Add(1) }
func (m *JobStats) IncFailed()       { m.failed.Add(1) }
func (m *JobStats) IncRetried()      { m.retried.Add(1) }
func (m *JobStats) IncDeadLettered() { m.deadLettered.Add(1) }

func (m *JobStats) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type JobStatsSnapshot struct {
	Claimed         uint64        `json:"claimed"`
	Done            uint64        `json:"done"`
	Failed          uint64        `json:"failed"`
	Retried         uint64        `json:"retried"`
	DeadLettered    uint64        `json:"dead_lettered"`
	DurationCount   uint64        `json:"duration_count"`
	AverageDuration time.Duration `json:"average_duration_ns"`
	MaxDuration     time.Duration `json:"max_duration_ns"`
}

func (m *JobStats) Snapshot() JobStatsSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration
	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return JobStatsSnapshot{
		Claimed:         m.claimed.Load(),
		Done:            m.done.Load(),
		Failed:          m.failed.Load(),
		Retried:         m.retried.Load(),
		DeadLettered:    m.deadLettered.Load(),
		DurationCount:   count,
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}
