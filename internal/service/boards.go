package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/ids"
)

type BoardService struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewBoardService(store Store, log *slog.Logger) *BoardService {
	if log == nil {
		log = slog.Default()
	}
	return &BoardService{store: store, log: log, now: utcNow}
}

// boardAccess resolves a board and checks the actor belongs to its
// workspace. A missing board is reported before membership.
func boardAccess(ctx context.Context, st Stores, actorID, boardID int64) (board.Board, workspace.Workspace, error) {
	b, err := st.Boards().GetByID(ctx, boardID)
	if err != nil {
		return board.Board{}, workspace.Workspace{}, err
	}

	ws, _, err := authorize(ctx, st, actorID, b.WorkspaceID)
	if err != nil {
		return board.Board{}, workspace.Workspace{}, err
	}
	return b, ws, nil
}

func (s *BoardService) Get(ctx context.Context, actorID, boardID int64) (BoardView, error) {
	b, ws, err := boardAccess(ctx, s.store, actorID, boardID)
	if err != nil {
		return BoardView{}, err
	}

	views, err := boardViews(ctx, s.store, ws, []board.Board{b})
	if err != nil {
		return BoardView{}, err
	}
	return views[0], nil
}

func (s *BoardService) Create(ctx context.Context, actorID int64, req board.CreateRequest) (BoardView, error) {
	ws, _, err := authorize(ctx, s.store, actorID, req.Workspace)
	if err != nil {
		return BoardView{}, err
	}

	now := s.now()
	b := board.Board{
		ID:          ids.New(),
		Name:        strings.TrimSpace(req.Name),
		WorkspaceID: ws.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Boards().Create(ctx, b); err != nil {
		return BoardView{}, fmt.Errorf("creating board: %w", err)
	}

	s.log.InfoContext(ctx, "board created", "board_id", b.ID, "workspace_id", ws.ID, "actor_id", actorID)
	return BoardView{
		ID:        b.ID,
		Name:      b.Name,
		Workspace: ws,
		Tasks:     []task.WithAssignee{},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func (s *BoardService) Update(ctx context.Context, actorID, boardID int64, req board.UpdateRequest) (BoardView, error) {
	var view BoardView

	err := s.store.WithTx(ctx, func(tx Stores) error {
		b, ws, err := boardAccess(ctx, tx, actorID, boardID)
		if err != nil {
			return err
		}

		b.Name = strings.TrimSpace(req.Name)
		b.UpdatedAt = s.now()
		if err := tx.Boards().Update(ctx, b); err != nil {
			return err
		}

		views, err := boardViews(ctx, tx, ws, []board.Board{b})
		if err != nil {
			return err
		}
		view = views[0]
		return nil
	})
	if err != nil {
		return BoardView{}, err
	}
	return view, nil
}

// Delete removes the board and its tasks.
func (s *BoardService) Delete(ctx context.Context, actorID, boardID int64) error {
	err := s.store.WithTx(ctx, func(tx Stores) error {
		if _, _, err := boardAccess(ctx, tx, actorID, boardID); err != nil {
			return err
		}
		return tx.Boards().Delete(ctx, boardID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "board deleted", "board_id", boardID, "actor_id", actorID)
	return nil
}
