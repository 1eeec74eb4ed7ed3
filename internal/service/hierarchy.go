package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/validation"
)

// FolderContents is one level of the tree as seen by a principal
type FolderContents struct {
	Folder  *model.Folder      `json:"folder"` // nil at the root
	Path    []model.Breadcrumb `json:"path"`
	Folders []*model.Folder    `json:"folders"`
	Files   []*model.File      `json:"files"`
	Role    model.Role         `json:"role"`
}

// HierarchyService owns the folder tree: creating, moving, renaming and
// deleting folders and files. Every structural change requires ownership.
type HierarchyService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
	access     *AccessService
	now        func() time.Time
}

func NewHierarchyService(
	folderRepo repository.FolderRepository,
	fileRepo repository.FileRepository,
	access *AccessService,
) *HierarchyService {
	return &HierarchyService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		access:     access,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *HierarchyService) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	name, err := resourceName(name)
	if err != nil {
		return nil, err
	}

	parentID = normalizeParent(parentID)
	if err := s.requireDestination(ctx, ownerID, parentID); err != nil {
		return nil, err
	}

	exists, err := s.folderRepo.SiblingExists(ctx, ownerID, parentID, name, "")
	if err != nil {
		return nil, storeErr("check sibling", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	now := s.now()
	folder := &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique index catches a concurrent create that passed the pre-check
	err = s.folderRepo.Create(ctx, folder)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, storeErr("create folder", err)
	}

	slog.Info("folder created", "folder_id", folder.ID, "owner_id", ownerID)
	return folder, nil
}

// Change is a combined rename and move. A nil Name keeps the current name.
// Move false keeps the current parent; Move with a nil ParentID is the root.
type Change struct {
	Name     *string
	Move     bool
	ParentID *string
}

// MoveFolder reparents a folder. A nil newParentID moves it to the root.
func (s *HierarchyService) MoveFolder(ctx context.Context, ownerID, folderID string, newParentID *string) (*model.Folder, error) {
	return s.UpdateFolder(ctx, ownerID, folderID, Change{Move: true, ParentID: newParentID})
}

// MoveFile puts a file into another folder, or the root when folderID is nil
func (s *HierarchyService) MoveFile(ctx context.Context, ownerID, fileID string, folderID *string) (*model.File, error) {
	return s.UpdateFile(ctx, ownerID, fileID, Change{Move: true, ParentID: folderID})
}

// Rename changes a folder or file name within its current parent
func (s *HierarchyService) Rename(ctx context.Context, ownerID string, resourceType model.ResourceType, id, newName string) (model.Resource, error) {
	switch resourceType {
	case model.ResourceFolder:
		folder, err := s.UpdateFolder(ctx, ownerID, id, Change{Name: &newName})
		if err != nil {
			return model.Resource{}, err
		}
		return model.FolderResource(folder), nil
	case model.ResourceFile:
		file, err := s.UpdateFile(ctx, ownerID, id, Change{Name: &newName})
		if err != nil {
			return model.Resource{}, err
		}
		return model.FileResource(file), nil
	default:
		return model.Resource{}, invalid("resource type must be file or folder")
	}
}

// UpdateFolder renames and/or moves a folder. Every check runs before the
// single write, so a rejected move never leaves a rename behind.
func (s *HierarchyService) UpdateFolder(ctx context.Context, ownerID, folderID string, change Change) (*model.Folder, error) {
	newName, err := changeName(change)
	if err != nil {
		return nil, err
	}

	res, err := s.access.Require(ctx, ownerID, model.ResourceFolder, folderID, model.RoleOwner)
	if err != nil {
		return nil, err
	}
	folder := res.Folder

	name, parentID := folder.Name, folder.ParentID
	if newName != "" {
		name = newName
	}
	if change.Move {
		parentID = normalizeParent(change.ParentID)
	}

	moving := !sameParent(folder.ParentID, parentID)
	if name == folder.Name && !moving {
		return folder, nil
	}

	if moving {
		if parentID != nil && *parentID == folderID {
			return nil, ErrInvalidMove
		}
		if err := s.requireDestination(ctx, ownerID, parentID); err != nil {
			return nil, err
		}
		if parentID != nil {
			cyclic, err := s.isDescendant(ctx, *parentID, folderID)
			if err != nil {
				return nil, err
			}
			if cyclic {
				return nil, ErrInvalidMove
			}
		}
	}

	exists, err := s.folderRepo.SiblingExists(ctx, ownerID, parentID, name, folder.ID)
	if err != nil {
		return nil, storeErr("check sibling", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	updated, err := s.folderRepo.Update(ctx, ownerID, folderID, name, parentID, s.now())
	if err != nil {
		return nil, mapFolderWrite("update folder", err)
	}

	slog.Info("folder updated", "folder_id", folderID, "owner_id", ownerID, "moved", moving)
	return updated, nil
}

// UpdateFile renames and/or moves a file with the same all-or-nothing rule
// as UpdateFolder
func (s *HierarchyService) UpdateFile(ctx context.Context, ownerID, fileID string, change Change) (*model.File, error) {
	newName, err := changeName(change)
	if err != nil {
		return nil, err
	}

	res, err := s.access.Require(ctx, ownerID, model.ResourceFile, fileID, model.RoleOwner)
	if err != nil {
		return nil, err
	}
	file := res.File

	name, folderID := file.Name, file.FolderID
	if newName != "" {
		name = newName
	}
	if change.Move {
		folderID = normalizeParent(change.ParentID)
	}

	moving := !sameParent(file.FolderID, folderID)
	if name == file.Name && !moving {
		return file, nil
	}

	if moving {
		if err := s.requireDestination(ctx, ownerID, folderID); err != nil {
			return nil, err
		}
	}

	exists, err := s.fileRepo.SiblingExists(ctx, ownerID, folderID, name, file.ID)
	if err != nil {
		return nil, storeErr("check sibling", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	updated, err := s.fileRepo.Update(ctx, ownerID, fileID, name, folderID, s.now())
	if err != nil {
		return nil, mapFileWrite("update file", err)
	}

	return updated, nil
}

// Delete soft-deletes a folder or file. Deleting something already in the
// trash succeeds without changes. Shares on the resource are left in place.
func (s *HierarchyService) Delete(ctx context.Context, ownerID string, resourceType model.ResourceType, id string) error {
	res, err := s.access.Load(ctx, resourceType, id)
	if err != nil {
		return err
	}

	if res.IsDeleted() {
		if res.OwnerID() != ownerID {
			return ErrNotFound
		}
		return nil
	}

	if _, err := s.access.Authorize(ctx, ownerID, res, model.RoleOwner); err != nil {
		return err
	}

	var deleted bool
	switch res.Type {
	case model.ResourceFolder:
		deleted, err = s.folderRepo.SoftDelete(ctx, ownerID, id, s.now())
	case model.ResourceFile:
		deleted, err = s.fileRepo.SoftDelete(ctx, ownerID, id, s.now())
	default:
		panic("service: unknown resource type " + string(res.Type))
	}
	if err != nil {
		return storeErr("delete", err)
	}

	// false means a concurrent delete won the race, which is the same outcome
	if deleted {
		slog.Info("resource deleted", "type", res.Type, "id", id, "owner_id", ownerID)
	}
	return nil
}

// ResolvePath returns the breadcrumbs of a folder the principal can read
func (s *HierarchyService) ResolvePath(ctx context.Context, principalID, folderID string) ([]model.Breadcrumb, error) {
	res, err := s.access.Require(ctx, principalID, model.ResourceFolder, folderID, model.RoleViewer)
	if err != nil {
		return nil, err
	}
	return s.path(ctx, principalID, res.Folder)
}

// path walks parent pointers up to the root and returns the crumbs root
// first. The walk stops early at a deleted or missing parent, at a folder the
// principal cannot read, or if it ever revisits a folder.
func (s *HierarchyService) path(ctx context.Context, principalID string, folder *model.Folder) ([]model.Breadcrumb, error) {
	crumbs := []model.Breadcrumb{{ID: folder.ID, Name: folder.Name}}
	visited := map[string]bool{folder.ID: true}

	next := folder.ParentID
	for next != nil && !visited[*next] {
		parent, err := s.folderRepo.ByID(ctx, *next)
		if errors.Is(err, repository.ErrFolderNotFound) {
			break
		}
		if err != nil {
			return nil, storeErr("resolve path", err)
		}
		if parent.IsDeleted {
			break
		}

		role, err := s.access.Check(ctx, principalID, model.FolderResource(parent))
		if err != nil {
			return nil, err
		}
		if role == model.RoleNone {
			break
		}

		visited[parent.ID] = true
		crumbs = append(crumbs, model.Breadcrumb{ID: parent.ID, Name: parent.Name})
		next = parent.ParentID
	}

	// Collected leaf first
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs, nil
}

// Contents lists a folder the principal can read, or the principal's own
// root when folderID is nil. Children are listed without checking each one;
// opening a child still requires access to that child.
func (s *HierarchyService) Contents(ctx context.Context, principalID string, folderID *string) (*FolderContents, error) {
	folderID = normalizeParent(folderID)

	contents := &FolderContents{Path: []model.Breadcrumb{}, Role: model.RoleOwner}
	if folderID != nil {
		res, err := s.access.Load(ctx, model.ResourceFolder, *folderID)
		if err != nil {
			return nil, err
		}
		if res.IsDeleted() {
			return nil, ErrNotFound
		}
		role, err := s.access.Authorize(ctx, principalID, res, model.RoleViewer)
		if err != nil {
			return nil, err
		}
		contents.Folder = res.Folder
		contents.Role = role

		contents.Path, err = s.path(ctx, principalID, res.Folder)
		if err != nil {
			return nil, err
		}
	}

	var err error
	contents.Folders, err = s.folderRepo.Children(ctx, principalID, folderID)
	if err != nil {
		return nil, storeErr("list folders", err)
	}
	contents.Files, err = s.fileRepo.Children(ctx, principalID, folderID)
	if err != nil {
		return nil, storeErr("list files", err)
	}

	return contents, nil
}

// requireDestination checks that a folder may receive new children from
// ownerID. nil is the owner's root and always acceptable.
func (s *HierarchyService) requireDestination(ctx context.Context, ownerID string, folderID *string) error {
	if folderID == nil {
		return nil
	}

	res, err := s.access.Load(ctx, model.ResourceFolder, *folderID)
	if errors.Is(err, ErrNotFound) {
		return ErrParentNotFound
	}
	if err != nil {
		return err
	}
	if res.IsDeleted() {
		return ErrParentNotFound
	}

	_, err = s.access.Authorize(ctx, ownerID, res, model.RoleOwner)
	if errors.Is(err, ErrNotFound) {
		return ErrParentNotFound
	}
	return err
}

// isDescendant reports whether candidate is ancestorID or lies below it, by
// walking candidate's ancestors to the root. Deleted folders still count as
// links in the chain.
func (s *HierarchyService) isDescendant(ctx context.Context, candidate, ancestorID string) (bool, error) {
	visited := make(map[string]bool)

	current := &candidate
	for current != nil {
		if *current == ancestorID {
			return true, nil
		}
		if visited[*current] {
			// Already cyclic data; refuse to make it worse
			return true, nil
		}
		visited[*current] = true

		folder, err := s.folderRepo.ByID(ctx, *current)
		if errors.Is(err, repository.ErrFolderNotFound) {
			return false, nil
		}
		if err != nil {
			return false, storeErr("walk ancestors", err)
		}
		current = folder.ParentID
	}

	return false, nil
}

// changeName validates the new name of a Change; "" means keep the old one
func changeName(change Change) (string, error) {
	if change.Name == nil {
		return "", nil
	}
	return resourceName(*change.Name)
}

func resourceName(name string) (string, error) {
	name = validation.NormalizeResourceName(name)
	if err := validation.ValidateResourceName(name); err != nil {
		return "", invalid("%v", err)
	}
	return name, nil
}

// normalizeParent treats an empty id as the root
func normalizeParent(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func mapFolderWrite(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrFolderNotFound):
		// Deleted or reassigned between the access check and the write
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateName):
		return ErrDuplicateName
	default:
		return storeErr(op, err)
	}
}

func mapFileWrite(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrFileNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateName):
		return ErrDuplicateName
	default:
		return storeErr(op, err)
	}
}
