package observability

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outcomes recorded on the query duration histogram.
const (
	dbOutcomeOK     = "ok"
	dbOutcomeNoRows = "no_rows"
	dbOutcomeError  = "error"
)

// ObserveDB times one store operation. A lookup that finds nothing is a
// normal answer here (non-members, unknown ids), so pgx.ErrNoRows is timed
// as no_rows and never reaches the error counter.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	outcome := dbOutcome(err)
	if outcome == dbOutcomeError {
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	return err
}

func dbOutcome(err error) string {
	switch {
	case err == nil:
		return dbOutcomeOK
	case errors.Is(err, pgx.ErrNoRows):
		return dbOutcomeNoRows
	default:
		return dbOutcomeError
	}
}

// classifyDBErr maps a failure to a low-cardinality kind label. Constraint
// violations are expected on duplicate usernames, emails, memberships and
// the single-owner index; the service turns them into conflicts.
func classifyDBErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "23503":
			return "foreign_key_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &connErr), pgconn.SafeToRetry(err):
		return "connection"
	case errors.Is(err, pgx.ErrTxClosed), errors.Is(err, pgx.ErrTxCommitRollback):
		return "tx_closed"
	default:
		return "unknown"
	}
}
