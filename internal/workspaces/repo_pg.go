package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo stores workspaces in Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, name, owner_user_id, api_key, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, ws Workspace) error {
	const query = `
INSERT INTO workspaces (id, name, owner_user_id, api_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		ws.ID,
		ws.Name,
		ws.OwnerUserID,
		nullableString(ws.APIKey),
		ws.CreatedAt,
		ws.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Workspace, error) {
	query := `SELECT ` + selectColumns + ` FROM workspaces WHERE id = $1`
	ws, err := scanWorkspace(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workspace{}, ErrNotFound
		}
		return Workspace{}, err
	}
	return ws, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Workspace, error) {
	query := `SELECT ` + selectColumns + ` FROM workspaces WHERE owner_user_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Workspace{}
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetAPIKey(ctx context.Context, id, apiKey string) error {
	const query = `UPDATE workspaces SET api_key = $1, updated_at = $2 WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, nullableString(apiKey), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row rowScanner) (Workspace, error) {
	var ws Workspace
	var apiKey sql.NullString
	if err := row.Scan(&ws.ID, &ws.Name, &ws.OwnerUserID, &apiKey, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return Workspace{}, err
	}
	if apiKey.Valid {
		ws.APIKey = apiKey.String
		ws.HasAPIKey = apiKey.String != ""
	}
	return ws, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
