package integrations

import "context"

// Repo defines persistence operations for notification integrations.
type Repo interface {
	Create(ctx context.Context, in Integration) error
	Get(ctx context.Context, id string) (Integration, error)
	List(ctx context.Context, workspaceID string) ([]Integration, error)
	ListEnabled(ctx context.Context, workspaceID, notificationType string) ([]Integration, error)
	Update(ctx context.Context, in Integration) error
	Delete(ctx context.Context, id string) error
}
