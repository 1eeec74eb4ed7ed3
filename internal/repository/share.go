package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/drive/internal/model"
)

var (
	ErrShareNotFound = errors.New("share not found")
)

type ShareRepository interface {
	// Upsert inserts the share or, when the grantee already holds one on the
	// resource, updates its role. created is false for the update case.
	Upsert(ctx context.Context, share *model.UserShare) (saved *model.UserShare, created bool, err error)
	ByID(ctx context.Context, id string) (*model.UserShare, error)
	Find(ctx context.Context, resourceType model.ResourceType, resourceID, granteeID string) (*model.UserShare, error)
	ForResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]*model.UserShareWithGrantee, error)
	ForGrantee(ctx context.Context, granteeID string) ([]*model.UserShare, error)
	Delete(ctx context.Context, id string) error
}

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Upsert(ctx context.Context, share *model.UserShare) (*model.UserShare, bool, error) {
	saved := &model.UserShare{}

	// Single statement so concurrent grants to the same grantee cannot duplicate
	query := `INSERT INTO shares (id, resource_type, resource_id, grantee_user_id, role, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (resource_type, resource_id, grantee_user_id) DO UPDATE SET role = excluded.role
	          RETURNING *`

	err := r.db.GetContext(ctx, saved, query,
		share.ID,
		share.ResourceType,
		share.ResourceID,
		share.GranteeUserID,
		share.Role,
		share.CreatedBy,
		share.CreatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	return saved, saved.ID == share.ID, nil
}

func (r *shareRepository) ByID(ctx context.Context, id string) (*model.UserShare, error) {
	share := &model.UserShare{}
	query := `SELECT * FROM shares WHERE id = $1`

	err := r.db.GetContext(ctx, share, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	return share, nil
}

func (r *shareRepository) Find(ctx context.Context, resourceType model.ResourceType, resourceID, granteeID string) (*model.UserShare, error) {
	share := &model.UserShare{}
	query := `SELECT * FROM shares WHERE resource_type = $1 AND resource_id = $2 AND grantee_user_id = $3`

	err := r.db.GetContext(ctx, share, query, resourceType, resourceID, granteeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	return share, nil
}

func (r *shareRepository) ForResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]*model.UserShareWithGrantee, error) {
	shares := []*model.UserShareWithGrantee{}
	query := `SELECT s.*, u.email AS grantee_email, u.name AS grantee_name
	          FROM shares s
	          JOIN users u ON u.id = s.grantee_user_id
	          WHERE s.resource_type = $1 AND s.resource_id = $2
	          ORDER BY s.created_at`

	err := r.db.SelectContext(ctx, &shares, query, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

func (r *shareRepository) ForGrantee(ctx context.Context, granteeID string) ([]*model.UserShare, error) {
	shares := []*model.UserShare{}
	query := `SELECT * FROM shares WHERE grantee_user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &shares, query, granteeID)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

func (r *shareRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM shares WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrShareNotFound
	}

	return nil
}
