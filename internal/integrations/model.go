package integrations

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("notification integration not found")
	ErrInvalidInput = errors.New("invalid notification integration input")
)

// Notification types a workspace can subscribe to.
const (
	TypeDocumentCompleted = "document.completed"
	TypeDocumentUpdated   = "document.updated"
)

// ValidType reports whether t is a supported notification type.
func ValidType(t string) bool {
	return t == TypeDocumentCompleted || t == TypeDocumentUpdated
}

// Integration is a workspace webhook subscriber for one notification type.
type Integration struct {
	ID               string    `json:"id"`
	WorkspaceID      string    `json:"workspaceId"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	NotificationType string    `json:"notificationType"`
	IsEnabled        bool      `json:"isEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Input is the body of integration create and update.
type Input struct {
	Name             *string `json:"name"`
	URL              *string `json:"url"`
	NotificationType *string `json:"notificationType"`
	IsEnabled        *bool   `json:"isEnabled"`
}
