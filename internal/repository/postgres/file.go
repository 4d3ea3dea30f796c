package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/fileshare-server/internal/model"
)

var _ model.FileStore = (*FileRepository)(nil)

type FileRepository struct {
	db *Connection
}

func NewFileRepository(db *Connection) *FileRepository {
	return &FileRepository{
		db: db,
	}
}

const fileColumns = `id, owner_id, filename, content_type, size, storage_key, url, created_at`

func (r *FileRepository) Create(ctx context.Context, file model.File) (model.File, error) {
	query := `INSERT INTO files (id, owner_id, filename, content_type, size, storage_key, url, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + fileColumns

	var saved model.File
	err := r.db.QueryRow(ctx, query,
		file.ID, file.OwnerID, file.Filename, file.ContentType,
		file.Size, file.StorageKey, file.URL, file.CreatedAt,
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.Filename, &saved.ContentType,
		&saved.Size, &saved.StorageKey, &saved.URL, &saved.CreatedAt,
	)
	if err != nil {
		return model.File{}, fmt.Errorf("failed to create file: %w", err)
	}

	return saved, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (model.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	var file model.File
	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID, &file.OwnerID, &file.Filename, &file.ContentType,
		&file.Size, &file.StorageKey, &file.URL, &file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.File{}, model.ErrNotFound
		}
		return model.File{}, fmt.Errorf("failed to get file by id: %w", err)
	}

	return file, nil
}

func (r *FileRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get files by owner id: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *FileRepository) GetSharedWith(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.File, error) {
	// A grant expiring exactly at now is already expired, hence the
	// strict comparison.
	query := `
		SELECT DISTINCT f.id, f.owner_id, f.filename, f.content_type, f.size, f.storage_key, f.url, f.created_at
		FROM files f
		JOIN shares s ON s.file_id = f.id
		WHERE s.kind = 'direct' AND s.shared_with = $1
		  AND (s.expires_at IS NULL OR s.expires_at > $2)
		ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get files shared with user: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM files WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanFiles(rows pgx.Rows) ([]model.File, error) {
	var files []model.File
	for rows.Next() {
		var file model.File
		err := rows.Scan(
			&file.ID, &file.OwnerID, &file.Filename, &file.ContentType,
			&file.Size, &file.StorageKey, &file.URL, &file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}
