package files

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kingsign-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(local.New(t.TempDir()), NewMemoryRepo(), time.Minute)
}

func TestUploadRecordsPageCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	f, err := svc.Upload(ctx, "ws-1", "contract.pdf", bytes.NewReader(minimalPDF(2)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.PageCount != 2 {
		t.Fatalf("expected 2 pages, got %d", f.PageCount)
	}
	if f.FileExtension != "pdf" || f.FileType != "application/pdf" {
		t.Fatalf("unexpected type %q/%q", f.FileType, f.FileExtension)
	}

	got, err := svc.Get(ctx, "ws-1", f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	url, err := svc.DownloadURL(ctx, got)
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if !strings.Contains(url, "expires=") {
		t.Fatalf("expected signed url, got %q", url)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "ws-1", "notes.txt", strings.NewReader("hello")); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile for extension, got %v", err)
	}
	if _, err := svc.Upload(ctx, "ws-1", "fake.pdf", strings.NewReader("not really a pdf")); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile for content, got %v", err)
	}
}

func TestUploadEnforcesMaxBytes(t *testing.T) {
	svc := newTestService(t)
	svc.MaxBytes = 16

	_, err := svc.Upload(context.Background(), "ws-1", "big.pdf", bytes.NewReader(minimalPDF(1)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestGetHidesOtherWorkspaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	f, err := svc.Upload(ctx, "ws-1", "contract.pdf", bytes.NewReader(minimalPDF(1)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Get(ctx, "ws-2", f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
