package footprints

import "context"

// Repo defines persistence operations for footprints. Create must fail with
// ErrDuplicate when a footprint for the same document and contact exists.
type Repo interface {
	Create(ctx context.Context, fp Footprint) error
	Exists(ctx context.Context, documentID, contactID string) (bool, error)
	Delete(ctx context.Context, documentID, contactID string) error
	ListByDocument(ctx context.Context, documentID string) ([]Footprint, error)
}
