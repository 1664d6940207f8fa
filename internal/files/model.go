package files

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrInvalidInput    = errors.New("invalid file input")
	ErrUnsupportedFile = errors.New("only PDF files are supported")
	ErrTooLarge        = errors.New("file too large")
)

// File is an uploaded PDF owned by a workspace.
type File struct {
	ID              string    `json:"id"`
	WorkspaceID     string    `json:"workspaceId"`
	FileName        string    `json:"fileName"`
	FileType        string    `json:"fileType"`
	FileExtension   string    `json:"fileExtension"`
	SizeBytes       int64     `json:"sizeBytes"`
	PageCount       int       `json:"pageCount"`
	StorageProvider string    `json:"-"`
	StorageKey      string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}
