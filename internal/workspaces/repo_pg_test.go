package workspaces

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM workspaces WHERE owner_user_id = \\$1 ORDER BY created_at, id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_user_id", "api_key", "created_at", "updated_at"}).
			AddRow("ws-1", "Acme", "user-1", nil, now, now).
			AddRow("ws-2", "Beta", "user-1", "ks_abc", now, now))

	repo := &PGRepo{DB: db}
	list, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 || list[0].HasAPIKey || !list[1].HasAPIKey || list[1].APIKey != "ks_abc" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetAPIKeyMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE workspaces SET api_key = \\$1, updated_at = \\$2 WHERE id = \\$3").
		WithArgs("ks_new", sqlmock.AnyArg(), "ws-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.SetAPIKey(context.Background(), "ws-404", "ks_new"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
