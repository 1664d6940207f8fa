package workspaces

import "context"

// Repo defines persistence operations for workspaces.
type Repo interface {
	Create(ctx context.Context, ws Workspace) error
	Get(ctx context.Context, id string) (Workspace, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Workspace, error)
	SetAPIKey(ctx context.Context, id, apiKey string) error
}
