package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, error)
	ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error)
	Patch(ctx context.Context, id string, p Patch) (Document, error)
	// SetStatusIf moves the document to next only while its status is from.
	// The bool reports whether this call made the change.
	SetStatusIf(ctx context.Context, id string, from, next Status) (Document, bool, error)
}
