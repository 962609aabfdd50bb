package service

import (
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
)

var (
	ErrOwnerRequired = fmt.Errorf("%w: owner role required", workspace.ErrForbidden)

	ErrPreviousBoardNotFound = fmt.Errorf("previous %w", board.ErrNotFound)
	ErrNewBoardNotFound      = fmt.Errorf("new %w", board.ErrNotFound)

	ErrAssigneeNotFound     = fmt.Errorf("assigned %w", user.ErrNotFound)
	ErrMemberUserNotFound   = fmt.Errorf("member %w", user.ErrNotFound)
	ErrInvalidCredentials   = fmt.Errorf("invalid username or password")
	ErrMemberNotInWorkspace = fmt.Errorf("%w: target", workspace.ErrNotMember)
)
