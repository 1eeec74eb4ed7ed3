package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/storage"
	"github.com/templui/drive/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// linkTokenBytes of crypto/rand output back every public link token
const linkTokenBytes = 32

type LinkRequest struct {
	ResourceType model.ResourceType `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	ExpiresAt    *time.Time         `json:"expires_at"`
	Password     *string            `json:"password"`
}

type LinkResult struct {
	Link *model.LinkShare `json:"link"`
	URL  string           `json:"url"`
}

// ResolvedLink is what an anonymous visitor of a link gets to see
type ResolvedLink struct {
	Resource    model.Resource `json:"resource"`
	Role        model.Role     `json:"role"`
	DownloadURL string         `json:"download_url,omitempty"`
}

type LinkService struct {
	linkRepo          repository.LinkShareRepository
	access            *AccessService
	storage           storage.Storage
	linkURL           func(token string) string
	passwordCost      int
	downloadURLExpiry time.Duration
	now               func() time.Time
}

func NewLinkService(
	linkRepo repository.LinkShareRepository,
	access *AccessService,
	storage storage.Storage,
	linkURL func(token string) string,
	passwordCost int,
	downloadURLExpiry time.Duration,
) *LinkService {
	if passwordCost < 10 {
		passwordCost = 10
	}
	return &LinkService{
		linkRepo:          linkRepo,
		access:            access,
		storage:           storage,
		linkURL:           linkURL,
		passwordCost:      passwordCost,
		downloadURLExpiry: downloadURLExpiry,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Create issues a viewer link for a resource the principal owns. An expiry in
// the past is accepted and yields a link that is already expired.
func (s *LinkService) Create(ctx context.Context, ownerID string, req LinkRequest) (*LinkResult, error) {
	if !req.ResourceType.Valid() {
		return nil, invalid("resource type must be file or folder")
	}

	hasPassword := req.Password != nil && *req.Password != ""
	if hasPassword {
		if err := validation.ValidateLinkPassword(*req.Password); err != nil {
			return nil, invalid("%v", err)
		}
	}

	res, err := s.access.Require(ctx, ownerID, req.ResourceType, req.ResourceID, model.RoleOwner)
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if hasPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.passwordCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash link password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	token, err := GenerateLinkToken()
	if err != nil {
		return nil, storeErr("generate token", err)
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := req.ExpiresAt.UTC()
		expiresAt = &t
	}

	link := &model.LinkShare{
		ID:           uuid.New().String(),
		ResourceType: res.Type,
		ResourceID:   res.ID(),
		Token:        token,
		Role:         model.RoleViewer,
		PasswordHash: passwordHash,
		ExpiresAt:    expiresAt,
		CreatedBy:    ownerID,
		CreatedAt:    s.now(),
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, storeErr("create link share", err)
	}

	slog.Info("link share created", "link_id", link.ID, "resource_type", res.Type, "resource_id", res.ID(), "has_password", link.HasPassword())
	return &LinkResult{Link: link, URL: s.linkURL(token)}, nil
}

// Resolve opens a link. Checks run in a fixed order: unknown token, expiry,
// missing password, wrong password, and finally whether the resource is live.
func (s *LinkService) Resolve(ctx context.Context, token, password string) (*ResolvedLink, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	link, err := s.linkRepo.ByToken(ctx, token)
	if errors.Is(err, repository.ErrLinkShareNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("load link share", err)
	}

	if link.IsExpired(s.now()) {
		return nil, ErrExpired
	}

	if link.HasPassword() {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidPassword
		}
	}

	res, err := s.access.Load(ctx, link.ResourceType, link.ResourceID)
	if err != nil {
		return nil, err
	}
	if res.IsDeleted() {
		return nil, ErrNotFound
	}

	resolved := &ResolvedLink{Resource: res, Role: link.Role}
	if res.Type == model.ResourceFile {
		resolved.DownloadURL, err = s.storage.SignedGetURL(ctx, res.File.StorageKey, s.downloadURLExpiry)
		if err != nil {
			return nil, storeErr("sign download url", err)
		}
	}

	return resolved, nil
}

// Revoke deletes a link share. Only the owner of the linked resource may.
func (s *LinkService) Revoke(ctx context.Context, principalID, linkID string) error {
	link, err := s.linkRepo.ByID(ctx, linkID)
	if errors.Is(err, repository.ErrLinkShareNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr("load link share", err)
	}

	if err := s.access.RequireOwner(ctx, principalID, link.ResourceType, link.ResourceID); err != nil {
		return err
	}

	err = s.linkRepo.Delete(ctx, linkID)
	if errors.Is(err, repository.ErrLinkShareNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr("delete link share", err)
	}

	slog.Info("link share revoked", "link_id", linkID)
	return nil
}

// PruneExpired hard-deletes links that expired more than olderThan ago
func (s *LinkService) PruneExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, invalid("older-than must not be negative")
	}

	n, err := s.linkRepo.DeleteExpired(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, storeErr("prune link shares", err)
	}

	slog.Info("pruned expired link shares", "count", n, "older_than", olderThan)
	return n, nil
}

// GenerateLinkToken returns 32 random bytes, hex encoded
func GenerateLinkToken() (string, error) {
	b := make([]byte, linkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
