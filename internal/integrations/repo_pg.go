package integrations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, workspace_id, name, url, notification_type, is_enabled, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, in Integration) error {
	const query = `
INSERT INTO notification_integrations (id, workspace_id, name, url, notification_type, is_enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query, in.ID, in.WorkspaceID, in.Name, in.URL, in.NotificationType, in.IsEnabled, in.CreatedAt, in.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Integration, error) {
	var in Integration
	err := r.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM notification_integrations WHERE id = $1`, id).Scan(
		&in.ID, &in.WorkspaceID, &in.Name, &in.URL, &in.NotificationType, &in.IsEnabled, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Integration{}, ErrNotFound
		}
		return Integration{}, err
	}
	return in, nil
}

func (r *PGRepo) List(ctx context.Context, workspaceID string) ([]Integration, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM notification_integrations WHERE workspace_id = $1 ORDER BY created_at`, workspaceID)
}

func (r *PGRepo) ListEnabled(ctx context.Context, workspaceID, notificationType string) ([]Integration, error) {
	query := `SELECT ` + selectColumns + ` FROM notification_integrations
WHERE workspace_id = $1 AND notification_type = $2 AND is_enabled = TRUE
ORDER BY created_at`
	return r.query(ctx, query, workspaceID, notificationType)
}

func (r *PGRepo) Update(ctx context.Context, in Integration) error {
	const query = `
UPDATE notification_integrations
SET name = $1, url = $2, notification_type = $3, is_enabled = $4, updated_at = $5
WHERE id = $6`
	res, err := r.DB.ExecContext(ctx, query, in.Name, in.URL, in.NotificationType, in.IsEnabled, in.UpdatedAt, in.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notification_integrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Integration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Integration{}
	for rows.Next() {
		var in Integration
		if err := rows.Scan(&in.ID, &in.WorkspaceID, &in.Name, &in.URL, &in.NotificationType, &in.IsEnabled, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
