package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrSimulatedOutage = errors.New("provider down (simulated)")

// LogNotifierConfig lets local runs simulate a slow or failing provider.
type LogNotifierConfig struct {
	Delay   time.Duration
	FailAll bool
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	log *slog.Logger
	cfg LogNotifierConfig
}

func NewLogNotifier(log *slog.Logger, cfg LogNotifierConfig) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log, cfg: cfg}
}

func (n *LogNotifier) simulate(ctx context.Context) error {
	if n.cfg.Delay > 0 {
		select {
		case <-time.After(n.cfg.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.cfg.FailAll {
		return ErrSimulatedOutage
	}
	return nil
}

func (n *LogNotifier) NotifyMemberAdded(ctx context.Context, in MemberAddedInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}
	n.log.InfoContext(ctx, "notification.member_added",
		"email", in.Email,
		"user_id", in.UserID,
		"workspace_id", in.WorkspaceID,
		"workspace", in.WorkspaceName,
		"role", in.Role,
		"added_by", in.AddedBy,
	)
	return nil
}

func (n *LogNotifier) NotifyTaskAssigned(ctx context.Context, in TaskAssignedInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}
	n.log.InfoContext(ctx, "notification.task_assigned",
		"email", in.Email,
		"assignee_id", in.AssigneeID,
		"task_id", in.TaskID,
		"task", in.TaskName,
		"board_id", in.BoardID,
		"assigned_by", in.AssignedBy,
	)
	return nil
}
