package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidAssignee = errors.New("assigned_to_id must be a user id, an empty string or null")
	ErrInvalidStatus   = errors.New("invalid task status")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusNotDone  Status = "not-done"
	StatusSemiDone Status = "semi-done"
	StatusDone     Status = "done"
)

var Statuses = []Status{StatusNotDone, StatusSemiDone, StatusDone}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Priority     Priority  `json:"priority"`
	Status       Status    `json:"status"`
	BoardID      int64     `json:"board_id"`
	AssignedToID *int64    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WithAssignee is a task with its assignee resolved for output.
type WithAssignee struct {
	Task
	AssignedTo *user.Summary `json:"assigned_to"`
}

// OptionalID models a JSON field that can be absent, explicitly cleared
// (null or ""), or set to an id given as a number or numeric string.
type OptionalID struct {
	Present bool
	ID      *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.ID = nil

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAssignee
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	} else {
		raw = string(data)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return ErrInvalidAssignee
	}
	o.ID = &id
	return nil
}

// Set reports whether the field carries an assignee id.
func (o OptionalID) Set() bool {
	return o.Present && o.ID != nil
}

// Cleared reports whether the field was sent empty to unassign.
func (o OptionalID) Cleared() bool {
	return o.Present && o.ID == nil
}

type CreateRequest struct {
	Name         string     `json:"name" binding:"required,notblank,max=200"`
	Description  string     `json:"description" binding:"required"`
	Priority     Priority   `json:"priority" binding:"required,task_priority"`
	Status       Status     `json:"status" binding:"omitempty,task_status"`
	AssignedToID OptionalID `json:"assigned_to_id" binding:"-"`
}

// UpdateRequest replaces name, description and priority. Status changes only
// when provided; the assignee follows OptionalID semantics.
type UpdateRequest struct {
	Name         string     `json:"name" binding:"required,notblank,max=200"`
	Description  string     `json:"description" binding:"required"`
	Priority     Priority   `json:"priority" binding:"required,task_priority"`
	Status       Status     `json:"status" binding:"omitempty,task_status"`
	AssignedToID OptionalID `json:"assigned_to_id" binding:"-"`
}

type StatusRequest struct {
	Status Status `json:"status" binding:"required,task_status"`
}

type AssigneeRequest struct {
	AssignedToID OptionalID `json:"assigned_to_id" binding:"-"`
}

type MoveRequest struct {
	PrevBoard int64 `json:"prevBoard" binding:"required,gt=0"`
	NewBoard  int64 `json:"newBoard" binding:"required,gt=0"`
}
