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
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	// ByID returns the file whether or not it is soft-deleted
	ByID(ctx context.Context, id string) (*model.File, error)
	SiblingExists(ctx context.Context, ownerID string, folderID *string, name, excludeID string) (bool, error)
	Children(ctx context.Context, ownerID string, folderID *string) ([]*model.File, error)
	Update(ctx context.Context, ownerID, id, name string, folderID *string, now time.Time) (*model.File, error)
	Complete(ctx context.Context, ownerID, id string, checksum *string, now time.Time) (*model.File, error)
	SoftDelete(ctx context.Context, ownerID, id string, now time.Time) (bool, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]*model.File, error)
	Trash(ctx context.Context, ownerID string) ([]*model.File, error)
	Search(ctx context.Context, ownerID, q string) ([]*model.File, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (id, name, mime_type, size_bytes, storage_key, owner_id, folder_id, checksum, is_deleted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.Name,
		file.MimeType,
		file.SizeBytes,
		file.StorageKey,
		file.OwnerID,
		file.FolderID,
		file.Checksum,
		file.IsDeleted,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) SiblingExists(ctx context.Context, ownerID string, folderID *string, name, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM files
	          WHERE owner_id = $1 AND COALESCE(folder_id, '') = $2 AND name = $3 AND id <> $4 AND is_deleted = false`

	err := r.db.GetContext(ctx, &count, query, ownerID, deref(folderID), name, excludeID)
	return count > 0, err
}

func (r *fileRepository) Children(ctx context.Context, ownerID string, folderID *string) ([]*model.File, error) {
	files := []*model.File{}

	var err error
	if folderID == nil {
		query := `SELECT * FROM files WHERE owner_id = $1 AND folder_id IS NULL AND is_deleted = false ORDER BY name`
		err = r.db.SelectContext(ctx, &files, query, ownerID)
	} else {
		query := `SELECT * FROM files WHERE folder_id = $1 AND is_deleted = false ORDER BY name`
		err = r.db.SelectContext(ctx, &files, query, *folderID)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Update renames and reparents a live file in a single statement
func (r *fileRepository) Update(ctx context.Context, ownerID, id, name string, folderID *string, now time.Time) (*model.File, error) {
	query := `UPDATE files SET name = $1, folder_id = $2, updated_at = $3
	          WHERE id = $4 AND owner_id = $5 AND is_deleted = false
	          RETURNING *`

	return r.update(ctx, query, name, folderID, now, id, ownerID)
}

// Complete records the upload checksum; mime type and size are left untouched
func (r *fileRepository) Complete(ctx context.Context, ownerID, id string, checksum *string, now time.Time) (*model.File, error) {
	query := `UPDATE files SET checksum = COALESCE($1, checksum), updated_at = $2
	          WHERE id = $3 AND owner_id = $4 AND is_deleted = false
	          RETURNING *`

	return r.update(ctx, query, checksum, now, id, ownerID)
}

func (r *fileRepository) update(ctx context.Context, query string, args ...any) (*model.File, error) {
	file := &model.File{}

	err := r.db.GetContext(ctx, file, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) SoftDelete(ctx context.Context, ownerID, id string, now time.Time) (bool, error) {
	query := `UPDATE files SET is_deleted = true, updated_at = $1
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

func (r *fileRepository) Recent(ctx context.Context, ownerID string, limit int) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT * FROM files WHERE owner_id = $1 AND is_deleted = false ORDER BY updated_at DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &files, query, ownerID, limit)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Trash(ctx context.Context, ownerID string) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT * FROM files WHERE owner_id = $1 AND is_deleted = true ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &files, query, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Search(ctx context.Context, ownerID, q string) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT * FROM files
	          WHERE owner_id = $1 AND is_deleted = false AND LOWER(name) LIKE $2 ESCAPE '\'
	          ORDER BY name`

	err := r.db.SelectContext(ctx, &files, query, ownerID, likePattern(q))
	if err != nil {
		return nil, err
	}

	return files, nil
}
