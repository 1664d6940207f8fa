package documents

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

const selectColumns = `id, workspace_id, template_id, file_id, title, note, status, archived, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    workspace_id,
    template_id,
    file_id,
    title,
    note,
    status,
    archived,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var fileID sql.NullString
	if doc.FileID != "" {
		fileID = sql.NullString{String: doc.FileID, Valid: true}
	}
	status := doc.Status
	if status == "" {
		status = StatusPending
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.WorkspaceID,
		doc.TemplateID,
		fileID,
		doc.Title,
		doc.Note,
		string(status),
		doc.Archived,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns matching documents, newest first.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	where := []string{}
	args := []any{}
	if filter.WorkspaceID != "" {
		args = append(args, filter.WorkspaceID)
		where = append(where, fmt.Sprintf("workspace_id = $%d", len(args)))
	}
	if !filter.IncludeArchived {
		where = append(where, "archived = FALSE")
	}
	if len(filter.IDs) > 0 {
		placeholders := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			args = append(args, id)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "id IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + selectColumns + ` FROM documents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM documents WHERE template_id = $1 ORDER BY id`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PGRepo) Patch(ctx context.Context, id string, p Patch) (Document, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Note != nil {
		add("note", *p.Note)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.Archived != nil {
		add("archived", *p.Archived)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), selectColumns)
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) SetStatusIf(ctx context.Context, id string, from, next Status) (Document, bool, error) {
	query := `UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 RETURNING ` + selectColumns
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, string(next), time.Now().UTC(), id, string(from)))
	if err == nil {
		return doc, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, err
	}
	// Lost the race or the document is elsewhere in its lifecycle.
	current, err := r.Get(ctx, id)
	if err != nil {
		return Document{}, false, err
	}
	return current, false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var templateID, fileID, note sql.NullString
	var status string
	if err := row.Scan(
		&doc.ID,
		&doc.WorkspaceID,
		&templateID,
		&fileID,
		&doc.Title,
		&note,
		&status,
		&doc.Archived,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	if templateID.Valid {
		doc.TemplateID = templateID.String
	}
	if fileID.Valid {
		doc.FileID = fileID.String
	}
	if note.Valid {
		doc.Note = note.String
	}
	doc.Status = Status(status)
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
