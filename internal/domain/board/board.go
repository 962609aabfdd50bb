package board

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("board not found")

type Board struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	WorkspaceID int64     `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=255"`
	Workspace int64  `json:"workspace" binding:"required,gt=0"`
}

type UpdateRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}
