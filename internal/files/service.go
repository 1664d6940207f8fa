package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"kingsign-backend/internal/shared/storage/object"
	"kingsign-backend/internal/shared/util"
)

const (
	defaultMaxBytes    = 10 << 20 // 10MB
	defaultDownloadTTL = time.Hour
)

// Service contains business logic for files.
type Service struct {
	Store       object.ObjectStore
	Repo        Repo
	MaxBytes    int64
	DownloadTTL time.Duration
}

// NewService constructs a Service with default limits.
func NewService(store object.ObjectStore, repo Repo, downloadTTL time.Duration) *Service {
	if downloadTTL <= 0 {
		downloadTTL = defaultDownloadTTL
	}
	return &Service{Store: store, Repo: repo, MaxBytes: defaultMaxBytes, DownloadTTL: downloadTTL}
}

// Upload validates a PDF, saves it to object storage and records the file.
func (s *Service) Upload(ctx context.Context, workspaceID, fileName string, r io.Reader) (File, error) {
	fileName = strings.TrimSpace(fileName)
	if workspaceID == "" || fileName == "" {
		return File{}, ErrInvalidInput
	}
	if ext := util.FileExtension(fileName); ext != "pdf" {
		return File{}, ErrUnsupportedFile
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return File{}, ErrTooLarge
	}

	pages, err := CountPages(data)
	if err != nil {
		return File{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, workspaceID, fileName, bytes.NewReader(data))
	if err != nil {
		return File{}, err
	}

	f := File{
		ID:              uuid.NewString(),
		WorkspaceID:     workspaceID,
		FileName:        fileName,
		FileType:        mimeType,
		FileExtension:   "pdf",
		SizeBytes:       size,
		PageCount:       pages,
		StorageProvider: s.Store.Provider(),
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Get returns a file of the workspace.
func (s *Service) Get(ctx context.Context, workspaceID, id string) (File, error) {
	f, err := s.Repo.Get(ctx, id)
	if err != nil {
		return File{}, err
	}
	if f.WorkspaceID != workspaceID {
		return File{}, ErrNotFound
	}
	return f, nil
}

// DownloadURL returns a signed URL for the stored object.
func (s *Service) DownloadURL(ctx context.Context, f File) (string, error) {
	if f.StorageKey == "" {
		return "", ErrNotFound
	}
	return s.Store.SignedURL(ctx, f.StorageKey, s.DownloadTTL)
}

// CountPages parses data as a PDF and returns its page count.
func CountPages(data []byte) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("%w: malformed pdf", ErrUnsupportedFile)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	n := reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("%w: no pages", ErrUnsupportedFile)
	}
	return n, nil
}
