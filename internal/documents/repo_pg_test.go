package documents

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var documentColumns = []string{"id", "workspace_id", "template_id", "file_id", "title", "note", "status", "archived", "created_at", "updated_at"}

func TestPGRepoListBuildsFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM documents WHERE workspace_id = \\$1 AND archived = FALSE AND id IN \\(\\$2, \\$3\\) ORDER BY created_at DESC, id").
		WithArgs("ws-1", "doc-1", "doc-2").
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow("doc-1", "ws-1", "tpl-1", nil, "NDA", nil, "pending", false, now, now))

	repo := &PGRepo{DB: db}
	list, err := repo.List(context.Background(), ListFilter{WorkspaceID: "ws-1", IDs: []string{"doc-1", "doc-2"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusPending || list[0].FileID != "" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoPatchStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE documents SET status = \\$1, updated_at = \\$2 WHERE id = \\$3 RETURNING").
		WithArgs("signed", sqlmock.AnyArg(), "doc-1").
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow("doc-1", "ws-1", "tpl-1", "file-1", "NDA", "", "signed", false, now, now))

	repo := &PGRepo{DB: db}
	status := StatusSigned
	doc, err := repo.Patch(context.Background(), "doc-1", Patch{Status: &status})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if doc.Status != StatusSigned {
		t.Fatalf("expected signed, got %s", doc.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetStatusIfLost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE documents SET status = \\$1, updated_at = \\$2 WHERE id = \\$3 AND status = \\$4 RETURNING").
		WithArgs("signed", sqlmock.AnyArg(), "doc-1", "pending").
		WillReturnRows(sqlmock.NewRows(documentColumns))
	mock.ExpectQuery("SELECT .* FROM documents WHERE id = \\$1").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow("doc-1", "ws-1", "tpl-1", "file-1", "NDA", "", "signed", false, now, now))

	repo := &PGRepo{DB: db}
	doc, changed, err := repo.SetStatusIf(context.Background(), "doc-1", StatusPending, StatusSigned)
	if err != nil {
		t.Fatalf("SetStatusIf: %v", err)
	}
	if changed || doc.Status != StatusSigned {
		t.Fatalf("expected unchanged signed document, got %+v changed=%v", doc, changed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
