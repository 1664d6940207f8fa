package contacts

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, workspace_id, email, name, phone, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, c Contact) error {
	const query = `
INSERT INTO contacts (id, workspace_id, email, name, phone, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var phone sql.NullString
	if c.Phone != "" {
		phone = sql.NullString{String: c.Phone, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.WorkspaceID, c.Email, c.Name, phone, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Contact, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM contacts WHERE id = $1`, id)
}

func (r *PGRepo) FindByEmail(ctx context.Context, workspaceID, email string) (Contact, error) {
	query := `SELECT ` + selectColumns + ` FROM contacts
WHERE workspace_id = $1 AND lower(email) = lower($2)
ORDER BY created_at, id
LIMIT 1`
	return r.one(ctx, query, workspaceID, email)
}

func (r *PGRepo) List(ctx context.Context, workspaceID string) ([]Contact, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+selectColumns+` FROM contacts WHERE workspace_id = $1 ORDER BY created_at, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) one(ctx context.Context, query string, args ...any) (Contact, error) {
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var c Contact
	var phone sql.NullString
	if err := row.Scan(&c.ID, &c.WorkspaceID, &c.Email, &c.Name, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Contact{}, err
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	return c, nil
}

var _ Repo = (*PGRepo)(nil)
