package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type WorkspacesRepo struct {
	conn
}

func (r *WorkspacesRepo) Create(ctx context.Context, ws workspace.Workspace) error {
	return r.observe("workspaces.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO workspaces (id, name, created_at, updated_at) VALUES ($1,$2,$3,$4)`,
			ws.ID, ws.Name, ws.CreatedAt, ws.UpdatedAt,
		)
		return err
	})
}

func (r *WorkspacesRepo) GetByID(ctx context.Context, id int64) (workspace.Workspace, error) {
	var ws workspace.Workspace
	err := r.observe("workspaces.get_by_id", func() error {
		return r.db.QueryRow(ctx,
			`SELECT id, name, created_at, updated_at FROM workspaces WHERE id = $1`, id,
		).Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.Workspace{}, workspace.ErrNotFound
		}
		return workspace.Workspace{}, err
	}
	return ws, nil
}

// List pages by (created_at, id) ascending, starting after the anchor when
// AfterID is set.
func (r *WorkspacesRepo) List(ctx context.Context, filter workspace.ListFilter) ([]workspace.Workspace, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	out := make([]workspace.Workspace, 0, limit)
	err := r.observe("workspaces.list_cursor", func() error {
		rows, err := r.db.Query(ctx, `
			SELECT id, name, created_at, updated_at
			FROM workspaces
			WHERE $1::bigint = 0 OR (created_at, id) > ($2, $1)
			ORDER BY created_at ASC, id ASC
			LIMIT $3
		`, filter.AfterID, filter.AfterCreatedAt, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var ws workspace.Workspace
			if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
				return err
			}
			out = append(out, ws)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WorkspacesRepo) ListForUser(ctx context.Context, userID int64) ([]workspace.WithRole, error) {
	out := []workspace.WithRole{}
	err := r.observe("workspaces.list_for_user", func() error {
		rows, err := r.db.Query(ctx, `
			SELECT w.id, w.name, w.created_at, w.updated_at, m.role
			FROM workspaces w
			JOIN memberships m ON m.workspace_id = w.id
			WHERE m.user_id = $1
			ORDER BY w.created_at ASC, w.id ASC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var item workspace.WithRole
			var role string
			if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt, &item.UpdatedAt, &role); err != nil {
				return err
			}
			item.Role = workspace.Role(role)
			out = append(out, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WorkspacesRepo) Update(ctx context.Context, ws workspace.Workspace) error {
	var tag pgconn.CommandTag
	err := r.observe("workspaces.update", func() error {
		var err error
		tag, err = r.db.Exec(ctx,
			`UPDATE workspaces SET name = $2, updated_at = $3 WHERE id = $1`,
			ws.ID, ws.Name, ws.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

// Delete cascades to memberships, boards and tasks through foreign keys.
func (r *WorkspacesRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag
	err := r.observe("workspaces.delete", func() error {
		var err error
		tag, err = r.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

var membershipConstraints = map[string]error{
	"memberships_user_workspace_key": workspace.ErrAlreadyMember,
	"memberships_one_owner_idx":      workspace.ErrOwnerExists,
	"memberships_workspace_id_fkey":  workspace.ErrNotFound,
	"memberships_user_id_fkey":       user.ErrNotFound,
}

type MembershipsRepo struct {
	conn
}

func (r *MembershipsRepo) Create(ctx context.Context, m workspace.Membership) error {
	err := r.observe("memberships.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO memberships (id, user_id, workspace_id, role, join_date) VALUES ($1,$2,$3,$4,$5)`,
			m.ID, m.UserID, m.WorkspaceID, string(m.Role), m.JoinDate,
		)
		return err
	})
	return constraintError(err, membershipConstraints)
}

func (r *MembershipsRepo) Get(ctx context.Context, workspaceID, userID int64) (workspace.Membership, error) {
	var m workspace.Membership
	var role string
	err := r.observe("memberships.get", func() error {
		return r.db.QueryRow(ctx, `
			SELECT id, user_id, workspace_id, role, join_date
			FROM memberships
			WHERE workspace_id = $1 AND user_id = $2
		`, workspaceID, userID).Scan(&m.ID, &m.UserID, &m.WorkspaceID, &role, &m.JoinDate)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.Membership{}, workspace.ErrNotMember
		}
		return workspace.Membership{}, err
	}
	m.Role = workspace.Role(role)
	return m, nil
}

func (r *MembershipsRepo) ListMembers(ctx context.Context, workspaceID int64) ([]workspace.Member, error) {
	out := []workspace.Member{}
	err := r.observe("memberships.list_members", func() error {
		rows, err := r.db.Query(ctx, `
			SELECT u.id, u.username, u.email, u.first_name, u.last_name, m.id, m.role
			FROM memberships m
			JOIN users u ON u.id = m.user_id
			WHERE m.workspace_id = $1
			ORDER BY m.join_date ASC, m.id ASC
		`, workspaceID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var mem workspace.Member
			var role string
			if err := rows.Scan(
				&mem.ID, &mem.Username, &mem.Email, &mem.FirstName, &mem.LastName,
				&mem.GroupRole.ID, &role,
			); err != nil {
				return err
			}
			mem.GroupRole.Role = workspace.Role(role)
			out = append(out, mem)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MembershipsRepo) Delete(ctx context.Context, workspaceID, userID int64) error {
	var tag pgconn.CommandTag
	err := r.observe("memberships.delete", func() error {
		var err error
		tag, err = r.db.Exec(ctx,
			`DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2`, workspaceID, userID)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workspace.ErrNotMember
	}
	return nil
}
