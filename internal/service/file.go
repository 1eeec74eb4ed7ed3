package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/storage"
	"github.com/templui/drive/internal/validation"
)

// UploadRequest describes a file about to be stored
type UploadRequest struct {
	Name      string  `json:"name"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	FolderID  *string `json:"folder_id"`
}

// UploadTicket is the metadata row plus where the client should PUT the bytes
type UploadTicket struct {
	File      *model.File `json:"file"`
	UploadURL string      `json:"upload_url"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Download struct {
	File      *model.File `json:"file"`
	URL       string      `json:"url"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type FileService struct {
	fileRepo          repository.FileRepository
	hierarchy         *HierarchyService
	access            *AccessService
	storage           storage.Storage
	policy            validation.UploadPolicy
	uploadURLExpiry   time.Duration
	downloadURLExpiry time.Duration
	now               func() time.Time
}

func NewFileService(
	fileRepo repository.FileRepository,
	hierarchy *HierarchyService,
	access *AccessService,
	storage storage.Storage,
	policy validation.UploadPolicy,
	uploadURLExpiry time.Duration,
	downloadURLExpiry time.Duration,
) *FileService {
	return &FileService{
		fileRepo:          fileRepo,
		hierarchy:         hierarchy,
		access:            access,
		storage:           storage,
		policy:            policy,
		uploadURLExpiry:   uploadURLExpiry,
		downloadURLExpiry: downloadURLExpiry,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// InitUpload records the file and returns a signed URL the client uploads to.
// If signing fails the row stays; the caller may retry or delete it.
func (s *FileService) InitUpload(ctx context.Context, ownerID string, req UploadRequest) (*UploadTicket, error) {
	file, err := s.prepare(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.insert(ctx, file); err != nil {
		return nil, err
	}

	url, err := s.storage.SignedPutURL(ctx, file.StorageKey, file.MimeType, file.SizeBytes, s.uploadURLExpiry)
	if err != nil {
		return nil, storeErr("sign upload url", err)
	}

	slog.Info("upload initialized", "file_id", file.ID, "owner_id", ownerID, "size", file.SizeBytes)
	return &UploadTicket{File: file, UploadURL: url, ExpiresAt: s.now().Add(s.uploadURLExpiry)}, nil
}

// Upload streams body to the object store and then records the file
func (s *FileService) Upload(ctx context.Context, ownerID string, req UploadRequest, body io.Reader) (*model.File, error) {
	file, err := s.prepare(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	err = s.storage.Put(ctx, file.StorageKey, body, file.SizeBytes, file.MimeType)
	if err != nil {
		return nil, storeErr("put object", err)
	}

	if err := s.insert(ctx, file); err != nil {
		// If DB insert fails, try to cleanup the uploaded object
		if delErr := s.storage.Delete(ctx, file.StorageKey); delErr != nil {
			slog.Error("failed to delete object during cleanup", "error", delErr, "file_id", file.ID)
		}
		return nil, err
	}

	slog.Info("file uploaded", "file_id", file.ID, "owner_id", ownerID, "size", file.SizeBytes)
	return file, nil
}

// CompleteUpload confirms the bytes reached the store with the declared size
// and records the checksum
func (s *FileService) CompleteUpload(ctx context.Context, ownerID, fileID string, checksum *string) (*model.File, error) {
	res, err := s.access.Require(ctx, ownerID, model.ResourceFile, fileID, model.RoleOwner)
	if err != nil {
		return nil, err
	}

	info, err := s.storage.Stat(ctx, res.File.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, invalid("upload has not been received")
	}
	if err != nil {
		return nil, storeErr("head object", err)
	}
	if info.Size != res.File.SizeBytes {
		slog.Warn("uploaded object size mismatch", "file_id", fileID, "declared", res.File.SizeBytes, "stored", info.Size)
		// Drop the bytes so nothing outside the upload policy stays stored
		if delErr := s.storage.Delete(ctx, res.File.StorageKey); delErr != nil {
			slog.Error("failed to delete mismatched object", "error", delErr, "file_id", fileID)
		}
		return nil, invalid("uploaded size %d does not match declared size %d", info.Size, res.File.SizeBytes)
	}

	if checksum != nil {
		trimmed := strings.TrimSpace(*checksum)
		if trimmed == "" || len(trimmed) > 128 {
			return nil, invalid("checksum must be 1 to 128 characters")
		}
		checksum = &trimmed
	}

	file, err := s.fileRepo.Complete(ctx, ownerID, fileID, checksum, s.now())
	if err != nil {
		return nil, mapFileWrite("complete upload", err)
	}

	return file, nil
}

// Download returns a signed URL for a file the principal can read
func (s *FileService) Download(ctx context.Context, principalID, fileID string) (*Download, error) {
	res, err := s.access.Require(ctx, principalID, model.ResourceFile, fileID, model.RoleViewer)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SignedGetURL(ctx, res.File.StorageKey, s.downloadURLExpiry)
	if err != nil {
		return nil, storeErr("sign download url", err)
	}

	return &Download{File: res.File, URL: url, ExpiresAt: s.now().Add(s.downloadURLExpiry)}, nil
}

// prepare validates an upload and builds its row. Nothing is written.
func (s *FileService) prepare(ctx context.Context, ownerID string, req UploadRequest) (*model.File, error) {
	name, err := resourceName(req.Name)
	if err != nil {
		return nil, err
	}

	mimeType := strings.ToLower(strings.TrimSpace(req.MimeType))
	if err := s.policy.Validate(req.SizeBytes, mimeType); err != nil {
		return nil, invalid("%v", err)
	}

	folderID := normalizeParent(req.FolderID)
	if err := s.hierarchy.requireDestination(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	exists, err := s.fileRepo.SiblingExists(ctx, ownerID, folderID, name, "")
	if err != nil {
		return nil, storeErr("check sibling", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	id := uuid.New().String()
	now := s.now()

	return &model.File{
		ID:         id,
		Name:       name,
		MimeType:   mimeType,
		SizeBytes:  req.SizeBytes,
		StorageKey: storageKey(ownerID, id, name),
		OwnerID:    ownerID,
		FolderID:   folderID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *FileService) insert(ctx context.Context, file *model.File) error {
	err := s.fileRepo.Create(ctx, file)
	if errors.Is(err, repository.ErrDuplicateName) {
		return ErrDuplicateName
	}
	if err != nil {
		return storeErr("create file", err)
	}
	return nil
}

// storageKey is tenants/<owner>/files/<file id><ext>. The display name is not
// part of the key so renames never touch the object store.
func storageKey(ownerID, fileID, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 16 || strings.ContainsAny(ext, " /\\") {
		ext = ""
	}
	return fmt.Sprintf("tenants/%s/files/%s%s", ownerID, fileID, ext)
}
