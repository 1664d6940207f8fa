package fields

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, document_id, template_field_id, contact_id, value, is_signed, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, f Field) error {
	const query = `
INSERT INTO document_fields (id, document_id, template_field_id, contact_id, value, is_signed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.DocumentID,
		f.TemplateFieldID,
		nullableString(f.ContactID),
		nullableJSON(f.Value),
		f.IsSigned,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

// CreateMany inserts all fields in one transaction.
func (r *PGRepo) CreateMany(ctx context.Context, list []Field) error {
	if len(list) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO document_fields (id, document_id, template_field_id, contact_id, value, is_signed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, f := range list {
		if _, err := tx.ExecContext(ctx, query,
			f.ID,
			f.DocumentID,
			f.TemplateFieldID,
			nullableString(f.ContactID),
			nullableJSON(f.Value),
			f.IsSigned,
			f.CreatedAt,
			f.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert document field %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

func (r *PGRepo) Get(ctx context.Context, id string) (Field, error) {
	query := `SELECT ` + selectColumns + ` FROM document_fields WHERE id = $1`
	f, err := scanField(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Field{}, ErrNotFound
		}
		return Field{}, err
	}
	return f, nil
}

func (r *PGRepo) FindFields(ctx context.Context, documentID, contactID string) ([]Field, error) {
	if contactID == "" {
		query := `SELECT ` + selectColumns + ` FROM document_fields WHERE document_id = $1 ORDER BY created_at, id`
		return r.query(ctx, query, documentID)
	}
	query := `SELECT ` + selectColumns + ` FROM document_fields WHERE document_id = $1 AND contact_id = $2 ORDER BY created_at, id`
	return r.query(ctx, query, documentID, contactID)
}

func (r *PGRepo) FindByContact(ctx context.Context, contactID string) ([]Field, error) {
	query := `SELECT ` + selectColumns + ` FROM document_fields WHERE contact_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, contactID)
}

// PatchField updates only the members set on p.
func (r *PGRepo) PatchField(ctx context.Context, id string, p Patch) (Field, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Value != nil {
		add("value", nullableJSON(*p.Value))
	}
	if p.IsSigned != nil {
		add("is_signed", *p.IsSigned)
	}
	if p.ContactID != nil {
		add("contact_id", nullableString(*p.ContactID))
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE document_fields SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), selectColumns)
	f, err := scanField(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Field{}, ErrNotFound
		}
		return Field{}, err
	}
	return f, nil
}

func (r *PGRepo) DeleteByTemplateField(ctx context.Context, templateFieldID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM document_fields WHERE template_field_id = $1`, templateFieldID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Field, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (Field, error) {
	var f Field
	var contactID sql.NullString
	var value []byte
	if err := row.Scan(
		&f.ID,
		&f.DocumentID,
		&f.TemplateFieldID,
		&contactID,
		&value,
		&f.IsSigned,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return Field{}, err
	}
	if contactID.Valid {
		f.ContactID = contactID.String
	}
	if len(value) > 0 {
		f.Value = append([]byte(nil), value...)
	}
	return f, nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

var _ Repo = (*PGRepo)(nil)
