package workspace

import (
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

var (
	ErrNotFound = errors.New("workspace not found")

	// ErrNotMember is returned by role lookups when no membership row exists.
	ErrNotMember = errors.New("user is not a member of the workspace")

	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyMember    = errors.New("user is already a member of the workspace")
	ErrOwnerSelfRemoval = errors.New("owner cannot remove themselves")
	ErrOwnerExists      = errors.New("workspace already has an owner")
	ErrInvalidRole      = errors.New("invalid member role")
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// AssignableRoles are the roles an owner may grant when adding a member.
// OWNER is never assignable, which keeps a single owner per workspace.
var AssignableRoles = []Role{RoleMember, RoleAdmin}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleMember, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) IsAssignable() bool {
	for _, a := range AssignableRoles {
		if r == a {
			return true
		}
	}
	return false
}

type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership links a user to a workspace with a role.
type Membership struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	WorkspaceID int64     `json:"workspace_id"`
	Role        Role      `json:"role"`
	JoinDate    time.Time `json:"join_date"`
}

// Member is a membership joined with its user, as listed to clients.
type Member struct {
	user.Summary
	GroupRole GroupRole `json:"groupRole"`
}

type GroupRole struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// WithRole is a workspace as seen by one of its members.
type WithRole struct {
	Workspace
	Role Role `json:"role"`
}

// ListFilter pages through workspaces ordered by (created_at, id).
// A zero AfterID starts from the beginning.
type ListFilter struct {
	Limit          int
	AfterCreatedAt time.Time
	AfterID        int64
}

type CreateRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

type UpdateRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required,member_role"`
}
