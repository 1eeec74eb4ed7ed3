package service

import (
	"context"
	"errors"
	"time"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/repository"
)

type StarService struct {
	starRepo repository.StarRepository
	access   *AccessService
	now      func() time.Time
}

func NewStarService(starRepo repository.StarRepository, access *AccessService) *StarService {
	return &StarService{
		starRepo: starRepo,
		access:   access,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Toggle stars or unstars a resource the principal can read and returns
// whether it is starred afterwards
func (s *StarService) Toggle(ctx context.Context, principalID string, resourceType model.ResourceType, resourceID string) (bool, error) {
	if !resourceType.Valid() {
		return false, invalid("resource type must be file or folder")
	}

	res, err := s.access.Require(ctx, principalID, resourceType, resourceID, model.RoleViewer)
	if err != nil {
		return false, err
	}

	starred, err := s.starRepo.Toggle(ctx, principalID, res.Type, res.ID(), s.now())
	if err != nil {
		return false, storeErr("toggle star", err)
	}
	return starred, nil
}

// Starred lists starred resources that are live and still readable. Stars
// on resources the principal lost access to are hidden, not removed.
func (s *StarService) Starred(ctx context.Context, principalID string) ([]model.Resource, error) {
	stars, err := s.starRepo.ForUser(ctx, principalID)
	if err != nil {
		return nil, storeErr("list stars", err)
	}

	out := []model.Resource{}
	for _, star := range stars {
		res, err := s.access.Load(ctx, star.ResourceType, star.ResourceID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.IsDeleted() {
			continue
		}

		role, err := s.access.Check(ctx, principalID, res)
		if err != nil {
			return nil, err
		}
		if !role.AtLeast(model.RoleViewer) {
			continue
		}
		out = append(out, res)
	}

	return out, nil
}
