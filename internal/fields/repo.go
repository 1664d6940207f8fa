package fields

import "context"

// Repo is the field storage contract used by the signing coordinator and the
// template-field cascade.
type Repo interface {
	Create(ctx context.Context, f Field) error
	CreateMany(ctx context.Context, list []Field) error
	Get(ctx context.Context, id string) (Field, error)
	// FindFields lists a document's fields; a non-empty contactID narrows to
	// that contact's fields.
	FindFields(ctx context.Context, documentID, contactID string) ([]Field, error)
	FindByContact(ctx context.Context, contactID string) ([]Field, error)
	PatchField(ctx context.Context, id string, p Patch) (Field, error)
	DeleteByTemplateField(ctx context.Context, templateFieldID string) (int, error)
}
