package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var boardConstraints = map[string]error{
	"boards_workspace_id_fkey": workspace.ErrNotFound,
}

type BoardsRepo struct {
	conn
}

func (r *BoardsRepo) Create(ctx context.Context, b board.Board) error {
	err := r.observe("boards.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO boards (id, name, workspace_id, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
			b.ID, b.Name, b.WorkspaceID, b.CreatedAt, b.UpdatedAt,
		)
		return err
	})
	return constraintError(err, boardConstraints)
}

func (r *BoardsRepo) GetByID(ctx context.Context, id int64) (board.Board, error) {
	var b board.Board
	err := r.observe("boards.get_by_id", func() error {
		return r.db.QueryRow(ctx,
			`SELECT id, name, workspace_id, created_at, updated_at FROM boards WHERE id = $1`, id,
		).Scan(&b.ID, &b.Name, &b.WorkspaceID, &b.CreatedAt, &b.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return board.Board{}, board.ErrNotFound
		}
		return board.Board{}, err
	}
	return b, nil
}

func (r *BoardsRepo) ListByWorkspace(ctx context.Context, workspaceID int64) ([]board.Board, error) {
	out := []board.Board{}
	err := r.observe("boards.list_by_workspace", func() error {
		rows, err := r.db.Query(ctx, `
			SELECT id, name, workspace_id, created_at, updated_at
			FROM boards
			WHERE workspace_id = $1
			ORDER BY created_at ASC, id ASC
		`, workspaceID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b board.Board
			if err := rows.Scan(&b.ID, &b.Name, &b.WorkspaceID, &b.CreatedAt, &b.UpdatedAt); err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BoardsRepo) Update(ctx context.Context, b board.Board) error {
	var tag pgconn.CommandTag
	err := r.observe("boards.update", func() error {
		var err error
		tag, err = r.db.Exec(ctx,
			`UPDATE boards SET name = $2, updated_at = $3 WHERE id = $1`, b.ID, b.Name, b.UpdatedAt)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return board.ErrNotFound
	}
	return nil
}

func (r *BoardsRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag
	err := r.observe("boards.delete", func() error {
		var err error
		tag, err = r.db.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return board.ErrNotFound
	}
	return nil
}

var taskConstraints = map[string]error{
	"tasks_board_id_fkey":       board.ErrNotFound,
	"tasks_assigned_to_id_fkey": user.ErrNotFound,
}

const taskColumns = `id, name, description, priority, status, board_id, assigned_to_id, created_at, updated_at`

type TasksRepo struct {
	conn
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var priority, status string
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &priority, &status,
		&t.BoardID, &t.AssignedToID, &t.CreatedAt, &t.UpdatedAt,
	)
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	return t, err
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) error {
	err := r.observe("tasks.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			t.ID, t.Name, t.Description, string(t.Priority), string(t.Status),
			t.BoardID, t.AssignedToID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	return constraintError(err, taskConstraints)
}

func (r *TasksRepo) GetInBoard(ctx context.Context, boardID, taskID int64) (task.Task, error) {
	var t task.Task
	err := r.observe("tasks.get_in_board", func() error {
		var err error
		t, err = scanTask(r.db.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND board_id = $2`, taskID, boardID))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) ListByBoards(ctx context.Context, boardIDs []int64) ([]task.Task, error) {
	out := []task.Task{}
	if len(boardIDs) == 0 {
		return out, nil
	}

	err := r.observe("tasks.list_by_boards", func() error {
		rows, err := r.db.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE board_id = ANY($1) ORDER BY created_at ASC, id ASC`, boardIDs)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TasksRepo) Update(ctx context.Context, t task.Task) error {
	var tag pgconn.CommandTag
	err := r.observe("tasks.update", func() error {
		var err error
		tag, err = r.db.Exec(ctx, `
			UPDATE tasks
			SET name = $2,
			    description = $3,
			    priority = $4,
			    status = $5,
			    board_id = $6,
			    assigned_to_id = $7,
			    updated_at = $8
			WHERE id = $1
		`, t.ID, t.Name, t.Description, string(t.Priority), string(t.Status), t.BoardID, t.AssignedToID, t.UpdatedAt)
		return err
	})
	if err != nil {
		return constraintError(err, taskConstraints)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TasksRepo) Delete(ctx context.Context, boardID, taskID int64) error {
	var tag pgconn.CommandTag
	err := r.observe("tasks.delete", func() error {
		var err error
		tag, err = r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND board_id = $2`, taskID, boardID)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}
