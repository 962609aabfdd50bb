package jobs

import "time"

// MemberAddedPayload tells a user they were added to a workspace.
type MemberAddedPayload struct {
	WorkspaceID   int64     `json:"workspaceId"`
	WorkspaceName string    `json:"workspaceName"`
	UserID        int64     `json:"userId"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AddedBy       int64     `json:"addedBy"`
	RequestedAt   time.Time `json:"requestedAt"`
}

// TaskAssignedPayload tells a user a task was assigned to them.
type TaskAssignedPayload struct {
	TaskID      int64     `json:"taskId"`
	TaskName    string    `json:"taskName"`
	BoardID     int64     `json:"boardId"`
	AssigneeID  int64     `json:"assigneeId"`
	Email       string    `json:"email"`
	AssignedBy  int64     `json:"assignedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}
