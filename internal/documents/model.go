package documents

import (
	"errors"
	"time"

	"kingsign-backend/internal/fields"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid document input")
	ErrStatusRegression = errors.New("document status cannot move backwards")
)

// Status is the lifecycle state of a document.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSigned    Status = "signed"
	StatusCompleted Status = "completed"
)

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusSigned:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s.rank() > 0 }

// Allows reports whether moving from s to next keeps the status monotonic.
func (s Status) Allows(next Status) bool {
	return next.Valid() && next.rank() >= s.rank()
}

// Document is an instance of a template sent out for signing.
type Document struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	TemplateID  string    `json:"templateId"`
	FileID      string    `json:"fileId,omitempty"`
	Title       string    `json:"title"`
	Note        string    `json:"note"`
	Status      Status    `json:"status"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WithFields is a document assembled with its current fields.
type WithFields struct {
	Document
	Fields []fields.Field `json:"documentFields"`
}

// Patch is a partial update; nil members are left unchanged.
type Patch struct {
	Title    *string `json:"title"`
	Note     *string `json:"note"`
	Status   *Status `json:"status"`
	Archived *bool   `json:"archived"`
}

// ListFilter narrows List results. An empty IDs slice means no id filter.
type ListFilter struct {
	WorkspaceID     string
	IncludeArchived bool
	IDs             []string
}
