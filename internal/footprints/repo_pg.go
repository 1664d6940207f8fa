package footprints

import (
	"context"
	"database/sql"
	"encoding/json"

	"kingsign-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres. The unique index on
// (document_id, contact_id) makes Create the atomic signing claim.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, fp Footprint) error {
	headers, err := json.Marshal(fp.RequestHeaders)
	if err != nil {
		return err
	}
	info, err := json.Marshal(fp.RequestInfo)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO signature_footprints (
    id,
    document_id,
    contact_id,
    ip_address,
    forwarded_ip,
    real_ip,
    user_agent,
    request_headers,
    request_info,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.DB.ExecContext(ctx, query,
		fp.ID,
		fp.DocumentID,
		fp.ContactID,
		fp.IPAddress,
		nullable(fp.ForwardedIP),
		nullable(fp.RealIP),
		fp.UserAgent,
		string(headers),
		string(info),
		fp.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) Exists(ctx context.Context, documentID, contactID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM signature_footprints WHERE document_id = $1 AND contact_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, documentID, contactID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) Delete(ctx context.Context, documentID, contactID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM signature_footprints WHERE document_id = $1 AND contact_id = $2`, documentID, contactID)
	return err
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Footprint, error) {
	const query = `
SELECT id, document_id, contact_id, ip_address, forwarded_ip, real_ip, user_agent, request_headers, request_info, created_at
FROM signature_footprints
WHERE document_id = $1
ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Footprint{}
	for rows.Next() {
		var fp Footprint
		var forwarded, realIP sql.NullString
		var headers, info []byte
		if err := rows.Scan(
			&fp.ID,
			&fp.DocumentID,
			&fp.ContactID,
			&fp.IPAddress,
			&forwarded,
			&realIP,
			&fp.UserAgent,
			&headers,
			&info,
			&fp.CreatedAt,
		); err != nil {
			return nil, err
		}
		fp.ForwardedIP = forwarded.String
		fp.RealIP = realIP.String
		if len(headers) > 0 {
			_ = json.Unmarshal(headers, &fp.RequestHeaders)
		}
		if len(info) > 0 {
			_ = json.Unmarshal(info, &fp.RequestInfo)
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
