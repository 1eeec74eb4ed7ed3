package model

import (
	"fmt"
	"time"
)

// Resource is either a Folder or a File. Exactly one of the pointers is set,
// matching Type. Build it with FolderResource or FileResource.
type Resource struct {
	Type   ResourceType `json:"type"`
	Folder *Folder      `json:"folder,omitempty"`
	File   *File        `json:"file,omitempty"`
}

func FolderResource(f *Folder) Resource {
	return Resource{Type: ResourceFolder, Folder: f}
}

func FileResource(f *File) Resource {
	return Resource{Type: ResourceFile, File: f}
}

func (r Resource) ID() string {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.ID
	case ResourceFile:
		return r.File.ID
	}
	panic(r.unknown())
}

func (r Resource) Name() string {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.Name
	case ResourceFile:
		return r.File.Name
	}
	panic(r.unknown())
}

func (r Resource) OwnerID() string {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.OwnerID
	case ResourceFile:
		return r.File.OwnerID
	}
	panic(r.unknown())
}

// ParentID is the containing folder, nil at the root
func (r Resource) ParentID() *string {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.ParentID
	case ResourceFile:
		return r.File.FolderID
	}
	panic(r.unknown())
}

func (r Resource) IsDeleted() bool {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.IsDeleted
	case ResourceFile:
		return r.File.IsDeleted
	}
	panic(r.unknown())
}

func (r Resource) UpdatedAt() time.Time {
	switch r.Type {
	case ResourceFolder:
		return r.Folder.UpdatedAt
	case ResourceFile:
		return r.File.UpdatedAt
	}
	panic(r.unknown())
}

func (r Resource) unknown() string {
	return fmt.Sprintf("model: unknown resource type %q", r.Type)
}
