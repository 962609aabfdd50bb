package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
)

type boardsRepo struct {
	v view
}

func (r boardsRepo) Create(_ context.Context, b board.Board) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.workspaces[b.WorkspaceID]; !ok {
			return workspace.ErrNotFound
		}
		st.boards[b.ID] = b
		return nil
	})
}

func (r boardsRepo) GetByID(_ context.Context, id int64) (board.Board, error) {
	var out board.Board
	err := r.v.read(func(st *state) error {
		b, ok := st.boards[id]
		if !ok {
			return board.ErrNotFound
		}
		out = b
		return nil
	})
	return out, err
}

func (r boardsRepo) ListByWorkspace(_ context.Context, workspaceID int64) ([]board.Board, error) {
	out := []board.Board{}
	err := r.v.read(func(st *state) error {
		for _, b := range st.boards {
			if b.WorkspaceID == workspaceID {
				out = append(out, b)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b board.Board) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r boardsRepo) Update(_ context.Context, b board.Board) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.boards[b.ID]; !ok {
			return board.ErrNotFound
		}
		st.boards[b.ID] = b
		return nil
	})
}

func (r boardsRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.boards[id]; !ok {
			return board.ErrNotFound
		}
		deleteBoard(st, id)
		return nil
	})
}

func deleteBoard(st *state, id int64) {
	delete(st.boards, id)
	for tid, t := range st.tasks {
		if t.BoardID == id {
			delete(st.tasks, tid)
		}
	}
}

type tasksRepo struct {
	v view
}

func checkTaskRefs(st *state, t task.Task) error {
	if _, ok := st.boards[t.BoardID]; !ok {
		return board.ErrNotFound
	}
	if t.AssignedToID != nil {
		if _, ok := st.users[*t.AssignedToID]; !ok {
			return user.ErrNotFound
		}
	}
	return nil
}

func (r tasksRepo) Create(_ context.Context, t task.Task) error {
	return r.v.write(func(st *state) error {
		if err := checkTaskRefs(st, t); err != nil {
			return err
		}
		st.tasks[t.ID] = t
		return nil
	})
}

func (r tasksRepo) GetInBoard(_ context.Context, boardID, taskID int64) (task.Task, error) {
	var out task.Task
	err := r.v.read(func(st *state) error {
		t, ok := st.tasks[taskID]
		if !ok || t.BoardID != boardID {
			return task.ErrNotFound
		}
		out = t
		return nil
	})
	return out, err
}

func (r tasksRepo) ListByBoards(_ context.Context, boardIDs []int64) ([]task.Task, error) {
	out := []task.Task{}
	err := r.v.read(func(st *state) error {
		for _, t := range st.tasks {
			if slices.Contains(boardIDs, t.BoardID) {
				out = append(out, t)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b task.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r tasksRepo) Update(_ context.Context, t task.Task) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.tasks[t.ID]; !ok {
			return task.ErrNotFound
		}
		if err := checkTaskRefs(st, t); err != nil {
			return err
		}
		st.tasks[t.ID] = t
		return nil
	})
}

func (r tasksRepo) Delete(_ context.Context, boardID, taskID int64) error {
	return r.v.write(func(st *state) error {
		t, ok := st.tasks[taskID]
		if !ok || t.BoardID != boardID {
			return task.ErrNotFound
		}
		delete(st.tasks, taskID)
		return nil
	})
}
