package templates

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. Template fields are removed with
// their template by the ON DELETE CASCADE constraint.
type PGRepo struct {
	DB *sql.DB
}

const (
	templateColumns = `id, workspace_id, file_id, name, description, created_at, updated_at`
	fieldColumns    = `id, template_id, field_type, field_name, placeholder, x_position, y_position, width, height, page, required, metadata, created_at, updated_at`
)

func (r *PGRepo) Create(ctx context.Context, t Template) error {
	const query = `
INSERT INTO templates (id, workspace_id, file_id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.WorkspaceID, t.FileID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Template, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

func (r *PGRepo) List(ctx context.Context, workspaceID string) ([]Template, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE workspace_id = $1 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, t Template) error {
	const query = `
UPDATE templates
SET name = $1, description = $2, file_id = $3, updated_at = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, t.Name, t.Description, t.FileID, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

func (r *PGRepo) CreateField(ctx context.Context, f Field) error {
	const query = `
INSERT INTO template_fields (id, template_id, field_type, field_name, placeholder, x_position, y_position, width, height, page, required, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	var metadata any
	if len(f.Metadata) > 0 {
		metadata = string(f.Metadata)
	}
	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.TemplateID,
		f.FieldType,
		f.FieldName,
		f.Placeholder,
		f.X,
		f.Y,
		f.Width,
		f.Height,
		f.Page,
		f.Required,
		metadata,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetField(ctx context.Context, id string) (Field, error) {
	f, err := scanField(r.DB.QueryRowContext(ctx, `SELECT `+fieldColumns+` FROM template_fields WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Field{}, ErrFieldNotFound
		}
		return Field{}, err
	}
	return f, nil
}

func (r *PGRepo) ListFields(ctx context.Context, templateID string) ([]Field, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+fieldColumns+` FROM template_fields WHERE template_id = $1 ORDER BY page, created_at`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Field{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeleteField(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM template_fields WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrFieldNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var t Template
	var fileID, description sql.NullString
	if err := row.Scan(&t.ID, &t.WorkspaceID, &fileID, &t.Name, &description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Template{}, err
	}
	if fileID.Valid {
		t.FileID = fileID.String
	}
	if description.Valid {
		t.Description = description.String
	}
	return t, nil
}

func scanField(row rowScanner) (Field, error) {
	var f Field
	var placeholder sql.NullString
	var metadata []byte
	if err := row.Scan(
		&f.ID,
		&f.TemplateID,
		&f.FieldType,
		&f.FieldName,
		&placeholder,
		&f.X,
		&f.Y,
		&f.Width,
		&f.Height,
		&f.Page,
		&f.Required,
		&metadata,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return Field{}, err
	}
	if placeholder.Valid {
		f.Placeholder = placeholder.String
	}
	if len(metadata) > 0 {
		f.Metadata = append([]byte(nil), metadata...)
	}
	return f, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
