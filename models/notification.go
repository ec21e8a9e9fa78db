package models

import (
	"encoding/json"
	"time"
)

// Notification is a user-facing in-app notification. Page and PageParams are
// an optional deep-link target consumed by the presentation layer.
type Notification struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title,omitempty"`
	Content    string          `json:"content,omitempty"`
	Read       bool            `json:"read"`
	Page       string          `json:"page,omitempty"`
	PageParams json.RawMessage `json:"page_params,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
