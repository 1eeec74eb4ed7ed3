package model

import (
	"time"
)

// Star is a per-user bookmark, independent of ownership and sharing.
type Star struct {
	UserID       string       `db:"user_id" json:"user_id"`
	ResourceType ResourceType `db:"resource_type" json:"resource_type"`
	ResourceID   string       `db:"resource_id" json:"resource_id"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
