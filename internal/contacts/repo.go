package contacts

import "context"

// Repo defines persistence operations for contacts.
type Repo interface {
	Create(ctx context.Context, c Contact) error
	Get(ctx context.Context, id string) (Contact, error)
	// FindByEmail returns the oldest contact with email in the workspace.
	FindByEmail(ctx context.Context, workspaceID, email string) (Contact, error)
	List(ctx context.Context, workspaceID string) ([]Contact, error)
}
