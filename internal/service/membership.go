package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/geocoder89/taskhub/internal/jobs"
)

// MembershipService answers whether a user may act on a workspace and
// manages who belongs to it.
type MembershipService struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewMembershipService(store Store, log *slog.Logger) *MembershipService {
	if log == nil {
		log = slog.Default()
	}
	return &MembershipService{store: store, log: log, now: utcNow}
}

// RoleOf returns the user's role in the workspace or workspace.ErrNotMember.
func (s *MembershipService) RoleOf(ctx context.Context, userID, workspaceID int64) (workspace.Role, error) {
	return roleOf(ctx, s.store, userID, workspaceID)
}

// AssertMember loads the workspace and checks that userID belongs to it.
// A missing workspace yields workspace.ErrNotFound before any membership
// check; a non-member yields workspace.ErrForbidden.
func (s *MembershipService) AssertMember(ctx context.Context, userID, workspaceID int64) (workspace.Workspace, workspace.Role, error) {
	return authorize(ctx, s.store, userID, workspaceID)
}

// AssertOwner is AssertMember restricted to the OWNER role.
func (s *MembershipService) AssertOwner(ctx context.Context, userID, workspaceID int64) (workspace.Workspace, error) {
	return authorizeOwner(ctx, s.store, userID, workspaceID)
}

func (s *MembershipService) ListMembers(ctx context.Context, actorID, workspaceID int64) ([]workspace.Member, error) {
	if _, _, err := authorize(ctx, s.store, actorID, workspaceID); err != nil {
		return nil, err
	}
	return s.store.Memberships().ListMembers(ctx, workspaceID)
}

// AddMember lets the workspace owner add the user registered under email.
// Checks run in order: workspace exists, actor is OWNER, role is assignable,
// a user has the email, the user is not yet a member.
func (s *MembershipService) AddMember(ctx context.Context, actorID, workspaceID int64, email string, role workspace.Role) (user.Summary, error) {
	var added user.Summary

	err := s.store.WithTx(ctx, func(tx Stores) error {
		ws, err := authorizeOwner(ctx, tx, actorID, workspaceID)
		if err != nil {
			return err
		}

		if !role.IsAssignable() {
			return workspace.ErrInvalidRole
		}

		target, err := tx.Users().GetByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return ErrMemberUserNotFound
			}
			return fmt.Errorf("looking up user by email: %w", err)
		}

		if _, err := tx.Memberships().Get(ctx, workspaceID, target.ID); err == nil {
			return workspace.ErrAlreadyMember
		} else if !errors.Is(err, workspace.ErrNotMember) {
			return fmt.Errorf("checking membership: %w", err)
		}

		membershipID := ids.New()
		err = tx.Memberships().Create(ctx, workspace.Membership{
			ID:          membershipID,
			UserID:      target.ID,
			WorkspaceID: workspaceID,
			Role:        role,
			JoinDate:    s.now(),
		})
		if err != nil {
			return err
		}

		req, err := jobs.NewRequest(jobs.TypeMemberAdded, jobs.MemberAddedPayload{
			WorkspaceID:   ws.ID,
			WorkspaceName: ws.Name,
			UserID:        target.ID,
			Email:         target.Email,
			Role:          string(role),
			AddedBy:       actorID,
			RequestedAt:   s.now(),
		}, "member_added:"+strconv.FormatInt(membershipID, 10))
		if err != nil {
			return err
		}
		if _, err := tx.Jobs().Enqueue(ctx, req); err != nil {
			return fmt.Errorf("enqueueing member notification: %w", err)
		}

		added = target.Summary()
		return nil
	})
	if err != nil {
		return user.Summary{}, err
	}

	s.log.InfoContext(ctx, "workspace member added",
		"workspace_id", workspaceID, "user_id", added.ID, "role", role, "actor_id", actorID)
	return added, nil
}

// RemoveMember lets the owner remove anyone but themselves.
func (s *MembershipService) RemoveMember(ctx context.Context, actorID, workspaceID, targetUserID int64) error {
	err := s.store.WithTx(ctx, func(tx Stores) error {
		if _, err := authorizeOwner(ctx, tx, actorID, workspaceID); err != nil {
			return err
		}

		if targetUserID == actorID {
			return workspace.ErrOwnerSelfRemoval
		}

		err := tx.Memberships().Delete(ctx, workspaceID, targetUserID)
		if errors.Is(err, workspace.ErrNotMember) {
			return ErrMemberNotInWorkspace
		}
		return err
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "workspace member removed",
		"workspace_id", workspaceID, "user_id", targetUserID, "actor_id", actorID)
	return nil
}

func roleOf(ctx context.Context, st Stores, userID, workspaceID int64) (workspace.Role, error) {
	m, err := st.Memberships().Get(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

func authorize(ctx context.Context, st Stores, userID, workspaceID int64) (workspace.Workspace, workspace.Role, error) {
	ws, err := st.Workspaces().GetByID(ctx, workspaceID)
	if err != nil {
		return workspace.Workspace{}, "", err
	}

	role, err := roleOf(ctx, st, userID, workspaceID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotMember) {
			return workspace.Workspace{}, "", workspace.ErrForbidden
		}
		return workspace.Workspace{}, "", fmt.Errorf("resolving role: %w", err)
	}

	return ws, role, nil
}

func authorizeOwner(ctx context.Context, st Stores, userID, workspaceID int64) (workspace.Workspace, error) {
	ws, role, err := authorize(ctx, st, userID, workspaceID)
	if err != nil {
		return workspace.Workspace{}, err
	}
	if role != workspace.RoleOwner {
		return workspace.Workspace{}, ErrOwnerRequired
	}
	return ws, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
