package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
)

type workspacesRepo struct {
	v view
}

func (r workspacesRepo) Create(_ context.Context, ws workspace.Workspace) error {
	return r.v.write(func(st *state) error {
		st.workspaces[ws.ID] = ws
		return nil
	})
}

func (r workspacesRepo) GetByID(_ context.Context, id int64) (workspace.Workspace, error) {
	var out workspace.Workspace
	err := r.v.read(func(st *state) error {
		ws, ok := st.workspaces[id]
		if !ok {
			return workspace.ErrNotFound
		}
		out = ws
		return nil
	})
	return out, err
}

func compareWorkspaces(a, b workspace.Workspace) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r workspacesRepo) List(_ context.Context, filter workspace.ListFilter) ([]workspace.Workspace, error) {
	var out []workspace.Workspace
	err := r.v.read(func(st *state) error {
		anchor := workspace.Workspace{ID: filter.AfterID, CreatedAt: filter.AfterCreatedAt}
		for _, ws := range st.workspaces {
			if filter.AfterID != 0 && compareWorkspaces(ws, anchor) <= 0 {
				continue
			}
			out = append(out, ws)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, compareWorkspaces)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	if out == nil {
		out = []workspace.Workspace{}
	}
	return out, nil
}

func (r workspacesRepo) ListForUser(_ context.Context, userID int64) ([]workspace.WithRole, error) {
	out := []workspace.WithRole{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.memberships {
			if m.UserID != userID {
				continue
			}
			if ws, ok := st.workspaces[m.WorkspaceID]; ok {
				out = append(out, workspace.WithRole{Workspace: ws, Role: m.Role})
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b workspace.WithRole) int {
		return compareWorkspaces(a.Workspace, b.Workspace)
	})
	return out, err
}

func (r workspacesRepo) Update(_ context.Context, ws workspace.Workspace) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.workspaces[ws.ID]; !ok {
			return workspace.ErrNotFound
		}
		st.workspaces[ws.ID] = ws
		return nil
	})
}

// Delete cascades to memberships, boards and their tasks.
func (r workspacesRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.workspaces[id]; !ok {
			return workspace.ErrNotFound
		}
		delete(st.workspaces, id)

		for mid, m := range st.memberships {
			if m.WorkspaceID == id {
				delete(st.memberships, mid)
			}
		}
		for bid, b := range st.boards {
			if b.WorkspaceID == id {
				deleteBoard(st, bid)
			}
		}
		return nil
	})
}

type membershipsRepo struct {
	v view
}

func (r membershipsRepo) Create(_ context.Context, m workspace.Membership) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.workspaces[m.WorkspaceID]; !ok {
			return workspace.ErrNotFound
		}
		if _, ok := st.users[m.UserID]; !ok {
			return user.ErrNotFound
		}
		for _, existing := range st.memberships {
			if existing.WorkspaceID != m.WorkspaceID {
				continue
			}
			if existing.UserID == m.UserID {
				return workspace.ErrAlreadyMember
			}
			if m.Role == workspace.RoleOwner && existing.Role == workspace.RoleOwner {
				return workspace.ErrOwnerExists
			}
		}
		st.memberships[m.ID] = m
		return nil
	})
}

func (r membershipsRepo) Get(_ context.Context, workspaceID, userID int64) (workspace.Membership, error) {
	var out workspace.Membership
	err := r.v.read(func(st *state) error {
		for _, m := range st.memberships {
			if m.WorkspaceID == workspaceID && m.UserID == userID {
				out = m
				return nil
			}
		}
		return workspace.ErrNotMember
	})
	return out, err
}

func (r membershipsRepo) ListMembers(_ context.Context, workspaceID int64) ([]workspace.Member, error) {
	var rows []workspace.Membership
	out := []workspace.Member{}

	err := r.v.read(func(st *state) error {
		for _, m := range st.memberships {
			if m.WorkspaceID == workspaceID {
				rows = append(rows, m)
			}
		}
		slices.SortFunc(rows, func(a, b workspace.Membership) int {
			if c := a.JoinDate.Compare(b.JoinDate); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		for _, m := range rows {
			u, ok := st.users[m.UserID]
			if !ok {
				continue
			}
			out = append(out, workspace.Member{
				Summary:   u.Summary(),
				GroupRole: workspace.GroupRole{ID: m.ID, Role: m.Role},
			})
		}
		return nil
	})
	return out, err
}

func (r membershipsRepo) Delete(_ context.Context, workspaceID, userID int64) error {
	return r.v.write(func(st *state) error {
		for mid, m := range st.memberships {
			if m.WorkspaceID == workspaceID && m.UserID == userID {
				delete(st.memberships, mid)
				return nil
			}
		}
		return workspace.ErrNotMember
	})
}
