package model

import (
	"time"
)

type File struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	StorageKey string    `db:"storage_key" json:"storage_key"` // Opaque key into the object store
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	FolderID   *string   `db:"folder_id" json:"folder_id"` // nil = root
	Checksum   *string   `db:"checksum" json:"checksum,omitempty"`
	IsDeleted  bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
