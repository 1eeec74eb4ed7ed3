package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/validation"
)

// ShareRequest grants a role on a resource to another user, identified by
// id or by email
type ShareRequest struct {
	ResourceType  model.ResourceType `json:"resource_type"`
	ResourceID    string             `json:"resource_id"`
	GranteeUserID string             `json:"grantee_user_id"`
	GranteeEmail  string             `json:"grantee_email"`
	Role          model.Role         `json:"role"`
}

type ShareResult struct {
	Share   *model.UserShare `json:"share"`
	Created bool             `json:"created"`
}

type ShareList struct {
	UserShares []*model.UserShareWithGrantee `json:"user_shares"`
	LinkShares []*model.LinkShare            `json:"link_shares"`
}

// SharedResource is a resource someone else shared with the principal
type SharedResource struct {
	model.Resource
	Role     model.Role `json:"role"`
	SharedAt time.Time  `json:"shared_at"`
}

type ShareService struct {
	shareRepo    repository.ShareRepository
	linkRepo     repository.LinkShareRepository
	userRepo     repository.UserRepository
	access       *AccessService
	emailService *EmailService
	appURL       string
	now          func() time.Time
}

func NewShareService(
	shareRepo repository.ShareRepository,
	linkRepo repository.LinkShareRepository,
	userRepo repository.UserRepository,
	access *AccessService,
	emailService *EmailService,
	appURL string,
) *ShareService {
	return &ShareService{
		shareRepo:    shareRepo,
		linkRepo:     linkRepo,
		userRepo:     userRepo,
		access:       access,
		emailService: emailService,
		appURL:       strings.TrimSuffix(appURL, "/"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ShareWithUser creates the grant, or changes its role if the grantee
// already has one on the resource
func (s *ShareService) ShareWithUser(ctx context.Context, ownerID string, req ShareRequest) (*ShareResult, error) {
	if !req.ResourceType.Valid() {
		return nil, invalid("resource type must be file or folder")
	}
	if !req.Role.Grantable() {
		return nil, invalid("role must be viewer or editor")
	}

	res, err := s.access.Require(ctx, ownerID, req.ResourceType, req.ResourceID, model.RoleOwner)
	if err != nil {
		return nil, err
	}

	grantee, err := s.grantee(ctx, req)
	if err != nil {
		return nil, err
	}
	if grantee.ID == ownerID {
		return nil, invalid("cannot share with yourself")
	}

	saved, created, err := s.shareRepo.Upsert(ctx, &model.UserShare{
		ID:            uuid.New().String(),
		ResourceType:  res.Type,
		ResourceID:    res.ID(),
		GranteeUserID: grantee.ID,
		Role:          req.Role,
		CreatedBy:     ownerID,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, storeErr("upsert share", err)
	}

	slog.Info("share saved", "share_id", saved.ID, "resource_type", res.Type, "resource_id", res.ID(), "role", saved.Role, "created", created)

	if created {
		s.notify(ctx, ownerID, grantee, res, saved.Role)
	}

	return &ShareResult{Share: saved, Created: created}, nil
}

// ListShares returns every grant on a resource. Owner only.
func (s *ShareService) ListShares(ctx context.Context, ownerID string, resourceType model.ResourceType, resourceID string) (*ShareList, error) {
	if !resourceType.Valid() {
		return nil, invalid("resource type must be file or folder")
	}

	res, err := s.access.Require(ctx, ownerID, resourceType, resourceID, model.RoleOwner)
	if err != nil {
		return nil, err
	}

	users, err := s.shareRepo.ForResource(ctx, res.Type, res.ID())
	if err != nil {
		return nil, storeErr("list shares", err)
	}

	links, err := s.linkRepo.ForResource(ctx, res.Type, res.ID())
	if err != nil {
		return nil, storeErr("list link shares", err)
	}

	return &ShareList{UserShares: users, LinkShares: links}, nil
}

// SharedWithMe lists live resources shared directly with the principal
func (s *ShareService) SharedWithMe(ctx context.Context, principalID string) ([]*SharedResource, error) {
	shares, err := s.shareRepo.ForGrantee(ctx, principalID)
	if err != nil {
		return nil, storeErr("list shared", err)
	}

	out := []*SharedResource{}
	for _, share := range shares {
		res, err := s.access.Load(ctx, share.ResourceType, share.ResourceID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.IsDeleted() {
			continue
		}
		out = append(out, &SharedResource{Resource: res, Role: share.Role, SharedAt: share.CreatedAt})
	}

	return out, nil
}

// Revoke deletes a user share. Only the owner of the shared resource may.
func (s *ShareService) Revoke(ctx context.Context, principalID, shareID string) error {
	share, err := s.shareRepo.ByID(ctx, shareID)
	if errors.Is(err, repository.ErrShareNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr("load share", err)
	}

	if err := s.access.RequireOwner(ctx, principalID, share.ResourceType, share.ResourceID); err != nil {
		return err
	}

	err = s.shareRepo.Delete(ctx, shareID)
	if errors.Is(err, repository.ErrShareNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr("delete share", err)
	}

	slog.Info("share revoked", "share_id", shareID)
	return nil
}

func (s *ShareService) grantee(ctx context.Context, req ShareRequest) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case req.GranteeUserID != "":
		user, err = s.userRepo.ByID(ctx, req.GranteeUserID)
	case req.GranteeEmail != "":
		user, err = s.userRepo.ByEmail(ctx, validation.NormalizeEmail(req.GranteeEmail))
	default:
		return nil, invalid("grantee is required")
	}

	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("grantee: %w", ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("load grantee", err)
	}
	return user, nil
}

// notify is best effort; a failed email never fails the share
func (s *ShareService) notify(ctx context.Context, ownerID string, grantee *model.User, res model.Resource, role model.Role) {
	if s.emailService == nil {
		return
	}

	sharerName := "Someone"
	if owner, err := s.userRepo.ByID(ctx, ownerID); err == nil {
		sharerName = owner.Name
		if sharerName == "" {
			sharerName = owner.Email
		}
	}

	err := s.emailService.SendShareNotification(ctx, EmailData{
		RecipientEmail: grantee.Email,
		RecipientName:  grantee.Name,
		SharerName:     sharerName,
		ResourceType:   string(res.Type),
		ResourceName:   res.Name(),
		Role:           string(role),
		URL:            fmt.Sprintf("%s/%ss/%s", s.appURL, res.Type, res.ID()),
	})
	if err != nil {
		slog.Warn("share notification failed", "error", err, "grantee_id", grantee.ID)
	}
}
