package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/ids"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type WorkspaceService struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewWorkspaceService(store Store, log *slog.Logger) *WorkspaceService {
	if log == nil {
		log = slog.Default()
	}
	return &WorkspaceService{store: store, log: log, now: utcNow}
}

// WorkspacePage is one page of the global workspace listing. HasMore tells
// the caller to request the next page anchored on the last item.
type WorkspacePage struct {
	Items   []workspace.Workspace
	HasMore bool
}

// ListAll returns every workspace, oldest first, one page at a time.
func (s *WorkspaceService) ListAll(ctx context.Context, filter workspace.ListFilter) (WorkspacePage, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	want := filter.Limit
	filter.Limit = want + 1

	items, err := s.store.Workspaces().List(ctx, filter)
	if err != nil {
		return WorkspacePage{}, fmt.Errorf("listing workspaces: %w", err)
	}

	page := WorkspacePage{Items: items}
	if len(items) > want {
		page.Items = items[:want]
		page.HasMore = true
	}
	return page, nil
}

func (s *WorkspaceService) ListMine(ctx context.Context, userID int64) ([]workspace.WithRole, error) {
	items, err := s.store.Workspaces().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user workspaces: %w", err)
	}
	return items, nil
}

func (s *WorkspaceService) Get(ctx context.Context, actorID, workspaceID int64) (workspace.WithRole, error) {
	ws, role, err := authorize(ctx, s.store, actorID, workspaceID)
	if err != nil {
		return workspace.WithRole{}, err
	}
	return workspace.WithRole{Workspace: ws, Role: role}, nil
}

// Create stores the workspace and makes the creator its OWNER in the same
// transaction.
func (s *WorkspaceService) Create(ctx context.Context, actorID int64, req workspace.CreateRequest) (workspace.WithRole, error) {
	now := s.now()
	ws := workspace.Workspace{
		ID:        ids.New(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx Stores) error {
		if err := tx.Workspaces().Create(ctx, ws); err != nil {
			return fmt.Errorf("creating workspace: %w", err)
		}
		return tx.Memberships().Create(ctx, workspace.Membership{
			ID:          ids.New(),
			UserID:      actorID,
			WorkspaceID: ws.ID,
			Role:        workspace.RoleOwner,
			JoinDate:    now,
		})
	})
	if err != nil {
		return workspace.WithRole{}, err
	}

	s.log.InfoContext(ctx, "workspace created", "workspace_id", ws.ID, "owner_id", actorID)
	return workspace.WithRole{Workspace: ws, Role: workspace.RoleOwner}, nil
}

// Update renames the workspace. Any member may do it.
func (s *WorkspaceService) Update(ctx context.Context, actorID, workspaceID int64, req workspace.UpdateRequest) (workspace.Workspace, error) {
	var updated workspace.Workspace

	err := s.store.WithTx(ctx, func(tx Stores) error {
		ws, _, err := authorize(ctx, tx, actorID, workspaceID)
		if err != nil {
			return err
		}

		ws.Name = strings.TrimSpace(req.Name)
		ws.UpdatedAt = s.now()
		if err := tx.Workspaces().Update(ctx, ws); err != nil {
			return err
		}
		updated = ws
		return nil
	})
	if err != nil {
		return workspace.Workspace{}, err
	}
	return updated, nil
}

// Delete removes the workspace with its boards, tasks and memberships.
func (s *WorkspaceService) Delete(ctx context.Context, actorID, workspaceID int64) error {
	err := s.store.WithTx(ctx, func(tx Stores) error {
		if _, err := authorizeOwner(ctx, tx, actorID, workspaceID); err != nil {
			return err
		}
		return tx.Workspaces().Delete(ctx, workspaceID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "workspace deleted", "workspace_id", workspaceID, "actor_id", actorID)
	return nil
}

// Boards lists the workspace's boards with their tasks.
func (s *WorkspaceService) Boards(ctx context.Context, actorID, workspaceID int64) ([]BoardView, error) {
	ws, _, err := authorize(ctx, s.store, actorID, workspaceID)
	if err != nil {
		return nil, err
	}

	boards, err := s.store.Boards().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boardViews(ctx, s.store, ws, boards)
}
