package model

import (
	"time"
)

type Folder struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	ParentID  *string   `db:"parent_id" json:"parent_id"` // nil = root
	IsDeleted bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Breadcrumb is one step of a folder path, root first.
type Breadcrumb struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
