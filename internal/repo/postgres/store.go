package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both the pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type conn struct {
	db   DBTX
	prom *observability.Prom
}

func (c conn) observe(op string, fn func() error) error {
	if c.prom != nil {
		return c.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (c conn) Users() service.UserStore             { return &UsersRepo{c} }
func (c conn) Workspaces() service.WorkspaceStore   { return &WorkspacesRepo{c} }
func (c conn) Memberships() service.MembershipStore { return &MembershipsRepo{c} }
func (c conn) Boards() service.BoardStore           { return &BoardsRepo{c} }
func (c conn) Tasks() service.TaskStore             { return &TasksRepo{c} }
func (c conn) Jobs() service.JobStore               { return &JobsRepo{c} }

type Store struct {
	conn
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{conn: conn{db: pool, prom: prom}, pool: pool}
}

// Queue is the outbox bound to the pool, for the worker.
func (s *Store) Queue() *JobsRepo {
	return &JobsRepo{s.conn}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx service.Stores) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(conn{db: tx, prom: s.prom}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ service.Store = (*Store)(nil)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// constraintError maps unique and foreign key violations to the domain
// error registered for the constraint name, or returns err unchanged.
func constraintError(err error, byName map[string]error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code != "23505" && pgErr.Code != "23503" {
		return err
	}
	if mapped, ok := byName[pgErr.ConstraintName]; ok {
		return mapped
	}
	return err
}
