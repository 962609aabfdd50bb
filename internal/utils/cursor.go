package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// WorkspaceCursor anchors keyset pagination on (created_at, id).
type WorkspaceCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id"`
}

func EncodeWorkspaceCursor(createdAt time.Time, id int64) (string, error) {
	b, err := json.Marshal(WorkspaceCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeWorkspaceCursor(cursor string) (WorkspaceCursor, error) {
	if cursor == "" {
		return WorkspaceCursor{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return WorkspaceCursor{}, ErrInvalidCursor
	}

	var c WorkspaceCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return WorkspaceCursor{}, ErrInvalidCursor
	}
	if c.ID <= 0 || c.CreatedAt.IsZero() {
		return WorkspaceCursor{}, ErrInvalidCursor
	}
	return c, nil
}
