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
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	// ByID returns the folder whether or not it is soft-deleted
	ByID(ctx context.Context, id string) (*model.Folder, error)
	SiblingExists(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error)
	Children(ctx context.Context, ownerID string, parentID *string) ([]*model.Folder, error)
	// Update sets name and parent together in one conditional write
	Update(ctx context.Context, ownerID, id, name string, parentID *string, now time.Time) (*model.Folder, error)
	SoftDelete(ctx context.Context, ownerID, id string, now time.Time) (bool, error)
	Trash(ctx context.Context, ownerID string) ([]*model.Folder, error)
	Search(ctx context.Context, ownerID, q string) ([]*model.Folder, error)
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *model.Folder) error {
	query := `INSERT INTO folders (id, name, owner_id, parent_id, is_deleted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		folder.ID,
		folder.Name,
		folder.OwnerID,
		folder.ParentID,
		folder.IsDeleted,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}

	return err
}

func (r *folderRepository) ByID(ctx context.Context, id string) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.GetContext(ctx, folder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, err
	}

	return folder, nil
}

func (r *folderRepository) SiblingExists(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM folders
	          WHERE owner_id = $1 AND COALESCE(parent_id, '') = $2 AND name = $3 AND id <> $4 AND is_deleted = false`

	err := r.db.GetContext(ctx, &count, query, ownerID, deref(parentID), name, excludeID)
	return count > 0, err
}

// Children lists live subfolders. At the root (parentID nil) only the owner's
// folders are returned; inside a folder every live child is returned.
func (r *folderRepository) Children(ctx context.Context, ownerID string, parentID *string) ([]*model.Folder, error) {
	folders := []*model.Folder{}

	var err error
	if parentID == nil {
		query := `SELECT * FROM folders WHERE owner_id = $1 AND parent_id IS NULL AND is_deleted = false ORDER BY name`
		err = r.db.SelectContext(ctx, &folders, query, ownerID)
	} else {
		query := `SELECT * FROM folders WHERE parent_id = $1 AND is_deleted = false ORDER BY name`
		err = r.db.SelectContext(ctx, &folders, query, *parentID)
	}
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Update(ctx context.Context, ownerID, id, name string, parentID *string, now time.Time) (*model.Folder, error) {
	query := `UPDATE folders SET name = $1, parent_id = $2, updated_at = $3
	          WHERE id = $4 AND owner_id = $5 AND is_deleted = false
	          RETURNING *`

	return r.update(ctx, query, name, parentID, now, id, ownerID)
}

// update runs a conditional single-row UPDATE ... RETURNING
func (r *folderRepository) update(ctx context.Context, query string, args ...any) (*model.Folder, error) {
	folder := &model.Folder{}

	err := r.db.GetContext(ctx, folder, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// SoftDelete flips is_deleted on a live folder. It reports false when the
// folder was already deleted or does not belong to ownerID.
func (r *folderRepository) SoftDelete(ctx context.Context, ownerID, id string, now time.Time) (bool, error) {
	query := `UPDATE folders SET is_deleted = true, updated_at = $1
	          WHERE id = $2 AND owner_id = $3 AND is_deleted = false`

	result, err := r.db.ExecContext(ctx, query, now, id, ownerID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *folderRepository) Trash(ctx context.Context, ownerID string) ([]*model.Folder, error) {
	folders := []*model.Folder{}
	query := `SELECT * FROM folders WHERE owner_id = $1 AND is_deleted = true ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &folders, query, ownerID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Search(ctx context.Context, ownerID, q string) ([]*model.Folder, error) {
	folders := []*model.Folder{}
	query := `SELECT * FROM folders
	          WHERE owner_id = $1 AND is_deleted = false AND LOWER(name) LIKE $2 ESCAPE '\'
	          ORDER BY name`

	err := r.db.SelectContext(ctx, &folders, query, ownerID, likePattern(q))
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
