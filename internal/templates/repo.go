package templates

import "context"

// Repo defines persistence operations for templates and their fields.
// Template reads do not populate Fields.
type Repo interface {
	Create(ctx context.Context, t Template) error
	Get(ctx context.Context, id string) (Template, error)
	List(ctx context.Context, workspaceID string) ([]Template, error)
	Update(ctx context.Context, t Template) error
	Delete(ctx context.Context, id string) error

	CreateField(ctx context.Context, f Field) error
	GetField(ctx context.Context, id string) (Field, error)
	ListFields(ctx context.Context, templateID string) ([]Field, error)
	DeleteField(ctx context.Context, id string) error
}
