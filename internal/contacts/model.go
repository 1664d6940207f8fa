package contacts

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("contact not found")
	ErrInvalidInput = errors.New("invalid contact input")
)

// Contact is an external signer scoped to a workspace.
type Contact struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input carries the signer details supplied on create or find-or-create.
type Input struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
