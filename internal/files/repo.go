package files

import "context"

// Repo defines persistence operations for files.
type Repo interface {
	Create(ctx context.Context, f File) error
	Get(ctx context.Context, id string) (File, error)
}
