package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/job"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/service"
)

// Store keeps every entity in process memory. It mirrors the constraints of
// the Postgres schema: unique usernames and emails, one membership per
// (user, workspace), a single OWNER, cascading deletes and SET NULL on the
// task assignee.
type Store struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	users       map[int64]user.User
	workspaces  map[int64]workspace.Workspace
	memberships map[int64]workspace.Membership
	boards      map[int64]board.Board
	tasks       map[int64]task.Task
	jobs        map[string]job.Job
	jobOrder    []string
}

func newState() *state {
	return &state{
		users:       make(map[int64]user.User),
		workspaces:  make(map[int64]workspace.Workspace),
		memberships: make(map[int64]workspace.Membership),
		boards:      make(map[int64]board.Board),
		tasks:       make(map[int64]task.Task),
		jobs:        make(map[string]job.Job),
	}
}

func (s *state) clone() *state {
	return &state{
		users:       maps.Clone(s.users),
		workspaces:  maps.Clone(s.workspaces),
		memberships: maps.Clone(s.memberships),
		boards:      maps.Clone(s.boards),
		tasks:       maps.Clone(s.tasks),
		jobs:        maps.Clone(s.jobs),
		jobOrder:    append([]string(nil), s.jobOrder...),
	}
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// view binds the entity stores either to the locking store or to a
// transaction that already holds the write lock.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
	}
	return fn(v.s.st)
}

func (v view) write(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.st)
}

func (v view) Users() service.UserStore             { return usersRepo{v} }
func (v view) Workspaces() service.WorkspaceStore   { return workspacesRepo{v} }
func (v view) Memberships() service.MembershipStore { return membershipsRepo{v} }
func (v view) Boards() service.BoardStore           { return boardsRepo{v} }
func (v view) Tasks() service.TaskStore             { return tasksRepo{v} }
func (v view) Jobs() service.JobStore               { return &JobsRepo{v} }

func (s *Store) Users() service.UserStore             { return view{s: s}.Users() }
func (s *Store) Workspaces() service.WorkspaceStore   { return view{s: s}.Workspaces() }
func (s *Store) Memberships() service.MembershipStore { return view{s: s}.Memberships() }
func (s *Store) Boards() service.BoardStore           { return view{s: s}.Boards() }
func (s *Store) Tasks() service.TaskStore             { return view{s: s}.Tasks() }
func (s *Store) Jobs() service.JobStore               { return view{s: s}.Jobs() }

// Queue exposes the outbox to an in-process worker.
func (s *Store) Queue() *JobsRepo { return &JobsRepo{view{s: s}} }

// WithTx serializes fn against every other writer and restores the previous
// state if fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(view{s: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Ping satisfies the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ service.Store = (*Store)(nil)
