package service

import (
	"context"
	"errors"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
)

// AccessService decides what a principal may do with a resource.
// Access is evaluated per resource: a share on a folder grants nothing on
// its contents.
type AccessService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
	shareRepo  repository.ShareRepository
}

func NewAccessService(
	folderRepo repository.FolderRepository,
	fileRepo repository.FileRepository,
	shareRepo repository.ShareRepository,
) *AccessService {
	return &AccessService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		shareRepo:  shareRepo,
	}
}

// Load fetches a resource in any state. Missing rows yield ErrNotFound.
func (s *AccessService) Load(ctx context.Context, resourceType model.ResourceType, id string) (model.Resource, error) {
	switch resourceType {
	case model.ResourceFolder:
		folder, err := s.folderRepo.ByID(ctx, id)
		if errors.Is(err, repository.ErrFolderNotFound) {
			return model.Resource{}, ErrNotFound
		}
		if err != nil {
			return model.Resource{}, storeErr("load folder", err)
		}
		return model.FolderResource(folder), nil
	case model.ResourceFile:
		file, err := s.fileRepo.ByID(ctx, id)
		if errors.Is(err, repository.ErrFileNotFound) {
			return model.Resource{}, ErrNotFound
		}
		if err != nil {
			return model.Resource{}, storeErr("load file", err)
		}
		return model.FileResource(file), nil
	default:
		return model.Resource{}, invalid("unknown resource type %q", resourceType)
	}
}

// Check returns the principal's role on the resource
func (s *AccessService) Check(ctx context.Context, principalID string, res model.Resource) (model.Role, error) {
	if principalID == "" {
		return model.RoleNone, nil
	}
	if res.OwnerID() == principalID {
		return model.RoleOwner, nil
	}

	share, err := s.shareRepo.Find(ctx, res.Type, res.ID(), principalID)
	if errors.Is(err, repository.ErrShareNotFound) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, storeErr("find share", err)
	}

	return share.Role, nil
}

// Authorize enforces needed on an already loaded resource. A principal with
// no role at all gets ErrNotFound so existence is not revealed.
func (s *AccessService) Authorize(ctx context.Context, principalID string, res model.Resource, needed model.Role) (model.Role, error) {
	role, err := s.Check(ctx, principalID, res)
	if err != nil {
		return role, err
	}
	if role == model.RoleNone {
		return role, ErrNotFound
	}
	if !role.AtLeast(needed) {
		return role, ErrForbidden
	}
	return role, nil
}

// Require loads a live resource and enforces needed on it. Soft-deleted
// resources are reported as missing.
func (s *AccessService) Require(ctx context.Context, principalID string, resourceType model.ResourceType, id string, needed model.Role) (model.Resource, error) {
	res, err := s.Load(ctx, resourceType, id)
	if err != nil {
		return model.Resource{}, err
	}
	if res.IsDeleted() {
		return model.Resource{}, ErrNotFound
	}

	if _, err := s.Authorize(ctx, principalID, res, needed); err != nil {
		return model.Resource{}, err
	}
	return res, nil
}

// RequireOwner re-derives ownership from the resource row in any state,
// since shares outlive soft deletes. Anyone else gets ErrForbidden.
func (s *AccessService) RequireOwner(ctx context.Context, principalID string, resourceType model.ResourceType, id string) error {
	res, err := s.Load(ctx, resourceType, id)
	if errors.Is(err, ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if res.OwnerID() != principalID {
		return ErrForbidden
	}
	return nil
}
