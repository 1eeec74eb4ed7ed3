package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/drive/internal/model"
)

var (
	ErrLinkShareNotFound = errors.New("link share not found")
	ErrDuplicateToken    = errors.New("link token already exists")
)

type LinkShareRepository interface {
	Create(ctx context.Context, link *model.LinkShare) error
	ByID(ctx context.Context, id string) (*model.LinkShare, error)
	ByToken(ctx context.Context, token string) (*model.LinkShare, error)
	ForResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]*model.LinkShare, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type linkShareRepository struct {
	db *sqlx.DB
}

func NewLinkShareRepository(db *sqlx.DB) LinkShareRepository {
	return &linkShareRepository{db: db}
}

func (r *linkShareRepository) Create(ctx context.Context, link *model.LinkShare) error {
	query := `
		INSERT INTO link_shares (id, resource_type, resource_id, token, role, password_hash, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.ResourceType,
		link.ResourceID,
		link.Token,
		link.Role,
		link.PasswordHash,
		link.ExpiresAt,
		link.CreatedBy,
		link.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateToken
	}
	return err
}

func (r *linkShareRepository) ByID(ctx context.Context, id string) (*model.LinkShare, error) {
	return r.get(ctx, `SELECT * FROM link_shares WHERE id = $1`, id)
}

func (r *linkShareRepository) ByToken(ctx context.Context, token string) (*model.LinkShare, error) {
	return r.get(ctx, `SELECT * FROM link_shares WHERE token = $1`, token)
}

func (r *linkShareRepository) get(ctx context.Context, query string, arg string) (*model.LinkShare, error) {
	var link model.LinkShare

	err := r.db.GetContext(ctx, &link, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkShareNotFound
	}
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *linkShareRepository) ForResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]*model.LinkShare, error) {
	links := []*model.LinkShare{}
	query := `SELECT * FROM link_shares WHERE resource_type = $1 AND resource_id = $2 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &links, query, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	return links, nil
}

func (r *linkShareRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM link_shares WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrLinkShareNotFound
	}

	return nil
}

// DeleteExpired removes links whose expiry is before the cutoff.
// Links without an expiry are never touched. Expired links are kept until
// this runs so that resolution can answer "expired" instead of "not found".
//
// Example:
//
//	// Remove links that expired more than 30 days ago
//	n, err := linkRepo.DeleteExpired(ctx, time.Now().Add(-30*24*time.Hour))
func (r *linkShareRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM link_shares WHERE expires_at IS NOT NULL AND expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
