package service

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
)

// BoardView is a board with its workspace and tasks resolved.
type BoardView struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Workspace workspace.Workspace `json:"workspace"`
	Tasks     []task.WithAssignee `json:"tasks"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// BoardRef is the parent context nested in task responses.
type BoardRef struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Workspace workspace.Workspace `json:"workspace"`
}

type TaskView struct {
	task.WithAssignee
	Board BoardRef `json:"board"`
}

func newTaskView(t task.Task, assignee *user.Summary, b board.Board, ws workspace.Workspace) TaskView {
	return TaskView{
		WithAssignee: task.WithAssignee{Task: t, AssignedTo: assignee},
		Board:        BoardRef{ID: b.ID, Name: b.Name, Workspace: ws},
	}
}

// boardViews loads the tasks of every board in one query and resolves
// their assignees in a second one.
func boardViews(ctx context.Context, st Stores, ws workspace.Workspace, boards []board.Board) ([]BoardView, error) {
	out := make([]BoardView, 0, len(boards))
	if len(boards) == 0 {
		return out, nil
	}

	boardIDs := make([]int64, 0, len(boards))
	for _, b := range boards {
		boardIDs = append(boardIDs, b.ID)
	}

	tasks, err := st.Tasks().ListByBoards(ctx, boardIDs)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	assignees, err := resolveAssignees(ctx, st, tasks)
	if err != nil {
		return nil, err
	}

	byBoard := make(map[int64][]task.WithAssignee, len(boards))
	for _, t := range tasks {
		byBoard[t.BoardID] = append(byBoard[t.BoardID], withAssignee(t, assignees))
	}

	for _, b := range boards {
		items := byBoard[b.ID]
		if items == nil {
			items = []task.WithAssignee{}
		}
		out = append(out, BoardView{
			ID:        b.ID,
			Name:      b.Name,
			Workspace: ws,
			Tasks:     items,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		})
	}
	return out, nil
}

func resolveAssignees(ctx context.Context, st Stores, tasks []task.Task) (map[int64]user.User, error) {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, t := range tasks {
		if t.AssignedToID == nil {
			continue
		}
		if _, ok := seen[*t.AssignedToID]; ok {
			continue
		}
		seen[*t.AssignedToID] = struct{}{}
		ids = append(ids, *t.AssignedToID)
	}
	if len(ids) == 0 {
		return map[int64]user.User{}, nil
	}

	users, err := st.Users().GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving assignees: %w", err)
	}
	return users, nil
}

func withAssignee(t task.Task, users map[int64]user.User) task.WithAssignee {
	out := task.WithAssignee{Task: t}
	if t.AssignedToID != nil {
		if u, ok := users[*t.AssignedToID]; ok {
			s := u.Summary()
			out.AssignedTo = &s
		}
	}
	return out
}
