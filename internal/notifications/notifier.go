package notifications

import "context"

type MemberAddedInput struct {
	Email         string
	UserID        int64
	WorkspaceID   int64
	WorkspaceName string
	Role          string
	AddedBy       int64
}

type TaskAssignedInput struct {
	Email      string
	AssigneeID int64
	TaskID     int64
	TaskName   string
	BoardID    int64
	AssignedBy int64
}

type Notifier interface {
	NotifyMemberAdded(ctx context.Context, in MemberAddedInput) error
	NotifyTaskAssigned(ctx context.Context, in TaskAssignedInput) error
}
