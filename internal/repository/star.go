package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/drive/internal/model"
)

type StarRepository interface {
	// Toggle removes the star if present, adds it otherwise, and returns the new state
	Toggle(ctx context.Context, userID string, resourceType model.ResourceType, resourceID string, now time.Time) (bool, error)
	ForUser(ctx context.Context, userID string) ([]*model.Star, error)
}

type starRepository struct {
	db *sqlx.DB
}

func NewStarRepository(db *sqlx.DB) StarRepository {
	return &starRepository{db: db}
}

func (r *starRepository) Toggle(ctx context.Context, userID string, resourceType model.ResourceType, resourceID string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM stars WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`,
		userID, resourceType, resourceID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO stars (user_id, resource_type, resource_id, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, resource_type, resource_id) DO NOTHING`,
		userID, resourceType, resourceID, now,
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *starRepository) ForUser(ctx context.Context, userID string) ([]*model.Star, error) {
	stars := []*model.Star{}
	query := `SELECT * FROM stars WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &stars, query, userID)
	if err != nil {
		return nil, err
	}

	return stars, nil
}
