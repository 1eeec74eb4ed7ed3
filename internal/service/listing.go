package service

import (
	"context"
	"strings"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
)

// RecentLimit caps the recent files listing
const RecentLimit = 20

// Listing groups folders and files for trash and search results
type Listing struct {
	Folders []*model.Folder `json:"folders"`
	Files   []*model.File   `json:"files"`
}

// ListingService answers the per-user views over the principal's own items
type ListingService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
}

func NewListingService(folderRepo repository.FolderRepository, fileRepo repository.FileRepository) *ListingService {
	return &ListingService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

func (s *ListingService) Recent(ctx context.Context, principalID string) ([]*model.File, error) {
	files, err := s.fileRepo.Recent(ctx, principalID, RecentLimit)
	if err != nil {
		return nil, storeErr("list recent", err)
	}
	return files, nil
}

func (s *ListingService) Trash(ctx context.Context, principalID string) (*Listing, error) {
	folders, err := s.folderRepo.Trash(ctx, principalID)
	if err != nil {
		return nil, storeErr("list trash", err)
	}
	files, err := s.fileRepo.Trash(ctx, principalID)
	if err != nil {
		return nil, storeErr("list trash", err)
	}
	return &Listing{Folders: folders, Files: files}, nil
}

// Search matches q case-insensitively anywhere in the name. A blank query
// matches nothing.
func (s *ListingService) Search(ctx context.Context, principalID, q string) (*Listing, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return &Listing{Folders: []*model.Folder{}, Files: []*model.File{}}, nil
	}
	if len(q) > 255 {
		return nil, invalid("search query is too long")
	}

	folders, err := s.folderRepo.Search(ctx, principalID, q)
	if err != nil {
		return nil, storeErr("search folders", err)
	}
	files, err := s.fileRepo.Search(ctx, principalID, q)
	if err != nil {
		return nil, storeErr("search files", err)
	}
	return &Listing{Folders: folders, Files: files}, nil
}
