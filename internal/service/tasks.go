package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/geocoder89/taskhub/internal/jobs"
)

type TaskService struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewTaskService(store Store, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{store: store, log: log, now: utcNow}
}

// taskAccess resolves board, then membership, then the task inside that board.
func taskAccess(ctx context.Context, st Stores, actorID, boardID, taskID int64) (task.Task, board.Board, workspace.Workspace, error) {
	b, ws, err := boardAccess(ctx, st, actorID, boardID)
	if err != nil {
		return task.Task{}, board.Board{}, workspace.Workspace{}, err
	}

	t, err := st.Tasks().GetInBoard(ctx, boardID, taskID)
	if err != nil {
		return task.Task{}, board.Board{}, workspace.Workspace{}, err
	}
	return t, b, ws, nil
}

func (s *TaskService) Get(ctx context.Context, actorID, boardID, taskID int64) (TaskView, error) {
	t, b, ws, err := taskAccess(ctx, s.store, actorID, boardID, taskID)
	if err != nil {
		return TaskView{}, err
	}
	return s.view(ctx, s.store, t, b, ws)
}

func (s *TaskService) Create(ctx context.Context, actorID, boardID int64, req task.CreateRequest) (TaskView, error) {
	var view TaskView

	err := s.store.WithTx(ctx, func(tx Stores) error {
		b, ws, err := boardAccess(ctx, tx, actorID, boardID)
		if err != nil {
			return err
		}

		status := req.Status
		if status == "" {
			status = task.StatusNotDone
		}

		now := s.now()
		t := task.Task{
			ID:          ids.New(),
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Priority:    req.Priority,
			Status:      status,
			BoardID:     b.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		var assignee *user.User
		if req.AssignedToID.Set() {
			u, err := lookupAssignee(ctx, tx, *req.AssignedToID.ID)
			if err != nil {
				return err
			}
			assignee = &u
			t.AssignedToID = &u.ID
		}

		if err := tx.Tasks().Create(ctx, t); err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		if assignee != nil {
			if err := s.enqueueAssigned(ctx, tx, actorID, t, *assignee); err != nil {
				return err
			}
		}

		view = newTaskView(t, summaryOf(assignee), b, ws)
		return nil
	})
	if err != nil {
		return TaskView{}, err
	}

	s.log.InfoContext(ctx, "task created", "task_id", view.ID, "board_id", boardID, "actor_id", actorID)
	return view, nil
}

// Update replaces name, description and priority, sets status when given
// and applies the tri-state assignee field.
func (s *TaskService) Update(ctx context.Context, actorID, boardID, taskID int64, req task.UpdateRequest) (TaskView, error) {
	return s.mutate(ctx, actorID, boardID, taskID, req.AssignedToID, func(t *task.Task) {
		t.Name = strings.TrimSpace(req.Name)
		t.Description = req.Description
		t.Priority = req.Priority
		if req.Status != "" {
			t.Status = req.Status
		}
	})
}

func (s *TaskService) SetStatus(ctx context.Context, actorID, boardID, taskID int64, status task.Status) (TaskView, error) {
	if !status.IsValid() {
		return TaskView{}, task.ErrInvalidStatus
	}
	return s.mutate(ctx, actorID, boardID, taskID, task.OptionalID{}, func(t *task.Task) {
		t.Status = status
	})
}

// SetAssignee assigns, unassigns or, when the field was omitted, leaves the
// assignee unchanged.
func (s *TaskService) SetAssignee(ctx context.Context, actorID, boardID, taskID int64, assignee task.OptionalID) (TaskView, error) {
	return s.mutate(ctx, actorID, boardID, taskID, assignee, nil)
}

func (s *TaskService) mutate(ctx context.Context, actorID, boardID, taskID int64, assignee task.OptionalID, apply func(t *task.Task)) (TaskView, error) {
	var view TaskView

	err := s.store.WithTx(ctx, func(tx Stores) error {
		t, b, ws, err := taskAccess(ctx, tx, actorID, boardID, taskID)
		if err != nil {
			return err
		}

		var newAssignee *user.User
		switch {
		case assignee.Set():
			u, err := lookupAssignee(ctx, tx, *assignee.ID)
			if err != nil {
				return err
			}
			if t.AssignedToID == nil || *t.AssignedToID != u.ID {
				newAssignee = &u
			}
			t.AssignedToID = &u.ID
		case assignee.Cleared():
			t.AssignedToID = nil
		}

		if apply != nil {
			apply(&t)
		}
		t.UpdatedAt = s.now()

		if err := tx.Tasks().Update(ctx, t); err != nil {
			return err
		}

		if newAssignee != nil {
			if err := s.enqueueAssigned(ctx, tx, actorID, t, *newAssignee); err != nil {
				return err
			}
		}

		view, err = s.view(ctx, tx, t, b, ws)
		return err
	})
	if err != nil {
		return TaskView{}, err
	}
	return view, nil
}

func (s *TaskService) Delete(ctx context.Context, actorID, boardID, taskID int64) error {
	err := s.store.WithTx(ctx, func(tx Stores) error {
		if _, _, _, err := taskAccess(ctx, tx, actorID, boardID, taskID); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, boardID, taskID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "task deleted", "task_id", taskID, "board_id", boardID, "actor_id", actorID)
	return nil
}

// Move re-parents a task from one board to another. Both boards and the
// task within the previous board are resolved before any access check, and
// the actor must belong to the workspaces of both boards.
func (s *TaskService) Move(ctx context.Context, actorID, taskID int64, req task.MoveRequest) (TaskView, error) {
	var view TaskView

	err := s.store.WithTx(ctx, func(tx Stores) error {
		prev, err := tx.Boards().GetByID(ctx, req.PrevBoard)
		if err != nil {
			if errors.Is(err, board.ErrNotFound) {
				return ErrPreviousBoardNotFound
			}
			return err
		}

		next, err := tx.Boards().GetByID(ctx, req.NewBoard)
		if err != nil {
			if errors.Is(err, board.ErrNotFound) {
				return ErrNewBoardNotFound
			}
			return err
		}

		t, err := tx.Tasks().GetInBoard(ctx, prev.ID, taskID)
		if err != nil {
			return err
		}

		if _, _, err := authorize(ctx, tx, actorID, prev.WorkspaceID); err != nil {
			return err
		}
		nextWS, _, err := authorize(ctx, tx, actorID, next.WorkspaceID)
		if err != nil {
			return err
		}

		t.BoardID = next.ID
		t.UpdatedAt = s.now()
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return err
		}

		view, err = s.view(ctx, tx, t, next, nextWS)
		return err
	})
	if err != nil {
		return TaskView{}, err
	}

	s.log.InfoContext(ctx, "task moved",
		"task_id", taskID, "from_board_id", req.PrevBoard, "to_board_id", req.NewBoard, "actor_id", actorID)
	return view, nil
}

func (s *TaskService) view(ctx context.Context, st Stores, t task.Task, b board.Board, ws workspace.Workspace) (TaskView, error) {
	users, err := resolveAssignees(ctx, st, []task.Task{t})
	if err != nil {
		return TaskView{}, err
	}
	wa := withAssignee(t, users)
	return newTaskView(t, wa.AssignedTo, b, ws), nil
}

func (s *TaskService) enqueueAssigned(ctx context.Context, tx Stores, actorID int64, t task.Task, assignee user.User) error {
	req, err := jobs.NewRequest(jobs.TypeTaskAssigned, jobs.TaskAssignedPayload{
		TaskID:      t.ID,
		TaskName:    t.Name,
		BoardID:     t.BoardID,
		AssigneeID:  assignee.ID,
		Email:       assignee.Email,
		AssignedBy:  actorID,
		RequestedAt: s.now(),
	}, "task_assigned:"+strconv.FormatInt(t.ID, 10)+":"+strconv.FormatInt(assignee.ID, 10)+":"+strconv.FormatInt(t.UpdatedAt.UnixNano(), 10))
	if err != nil {
		return err
	}
	if _, err := tx.Jobs().Enqueue(ctx, req); err != nil {
		return fmt.Errorf("enqueueing assignment notification: %w", err)
	}
	return nil
}

func lookupAssignee(ctx context.Context, st Stores, userID int64) (user.User, error) {
	u, err := st.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrAssigneeNotFound
		}
		return user.User{}, fmt.Errorf("looking up assignee: %w", err)
	}
	return u, nil
}

func summaryOf(u *user.User) *user.Summary {
	if u == nil {
		return nil
	}
	s := u.Summary()
	return &s
}
