package service

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/job"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]user.User, error)
	Delete(ctx context.Context, id int64) error
}

type WorkspaceStore interface {
	Create(ctx context.Context, ws workspace.Workspace) error
	GetByID(ctx context.Context, id int64) (workspace.Workspace, error)
	List(ctx context.Context, filter workspace.ListFilter) ([]workspace.Workspace, error)
	ListForUser(ctx context.Context, userID int64) ([]workspace.WithRole, error)
	Update(ctx context.Context, ws workspace.Workspace) error
	Delete(ctx context.Context, id int64) error
}

type MembershipStore interface {
	// Create fails with workspace.ErrAlreadyMember on a duplicate
	// (user, workspace) pair and workspace.ErrOwnerExists on a second OWNER.
	Create(ctx context.Context, m workspace.Membership) error
	Get(ctx context.Context, workspaceID, userID int64) (workspace.Membership, error)
	ListMembers(ctx context.Context, workspaceID int64) ([]workspace.Member, error)
	Delete(ctx context.Context, workspaceID, userID int64) error
}

type BoardStore interface {
	Create(ctx context.Context, b board.Board) error
	GetByID(ctx context.Context, id int64) (board.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]board.Board, error)
	Update(ctx context.Context, b board.Board) error
	Delete(ctx context.Context, id int64) error
}

type TaskStore interface {
	Create(ctx context.Context, t task.Task) error
	// GetInBoard only finds the task while it belongs to boardID.
	GetInBoard(ctx context.Context, boardID, taskID int64) (task.Task, error)
	ListByBoards(ctx context.Context, boardIDs []int64) ([]task.Task, error)
	Update(ctx context.Context, t task.Task) error
	Delete(ctx context.Context, boardID, taskID int64) error
}

type JobStore interface {
	Enqueue(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// Stores exposes the per-entity stores, bound to a pool or a transaction.
type Stores interface {
	Users() UserStore
	Workspaces() WorkspaceStore
	Memberships() MembershipStore
	Boards() BoardStore
	Tasks() TaskStore
	Jobs() JobStore
}

// Store is the persistence entry point the services depend on.
type Store interface {
	Stores
	// WithTx runs fn with stores bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Stores) error) error
}
