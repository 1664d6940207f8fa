package files

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, f File) error {
	const query = `
INSERT INTO files (
    id,
    workspace_id,
    file_name,
    file_type,
    file_extension,
    size_bytes,
    page_count,
    storage_provider,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	provider := f.StorageProvider
	if provider == "" {
		provider = "local"
	}
	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.WorkspaceID,
		f.FileName,
		f.FileType,
		f.FileExtension,
		f.SizeBytes,
		f.PageCount,
		provider,
		f.StorageKey,
		f.CreatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (File, error) {
	const query = `
SELECT id, workspace_id, file_name, file_type, file_extension, size_bytes, page_count, storage_provider, storage_key, created_at
FROM files
WHERE id = $1`
	var f File
	var pageCount sql.NullInt64
	var provider sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&f.ID,
		&f.WorkspaceID,
		&f.FileName,
		&f.FileType,
		&f.FileExtension,
		&f.SizeBytes,
		&pageCount,
		&provider,
		&f.StorageKey,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	if pageCount.Valid {
		f.PageCount = int(pageCount.Int64)
	}
	if provider.Valid {
		f.StorageProvider = provider.String
	}
	return f, nil
}

var _ Repo = (*PGRepo)(nil)
