package workspaces

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("workspace not found")
	ErrInvalidInput = errors.New("invalid workspace input")
)

// Workspace is the tenant boundary owning templates, documents, contacts
// and integrations.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"ownerUserId"`
	APIKey      string    `json:"-"`
	HasAPIKey   bool      `json:"hasApiKey"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
