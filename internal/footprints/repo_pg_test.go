package footprints

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO signature_footprints").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "signature_footprints_document_contact_uidx"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Footprint{
		ID: "fp-1", DocumentID: "doc-1", ContactID: "c1",
		Provenance: Provenance{IPAddress: "1.2.3.4", UserAgent: "ua"},
		CreatedAt:  time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("doc-1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := &PGRepo{DB: db}
	ok, err := repo.Exists(context.Background(), "doc-1", "c1")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v (%v)", ok, err)
	}
}
