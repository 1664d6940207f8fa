package footprints

import (
	"context"
	"sort"
	"sync"
)

type pairKey struct {
	documentID string
	contactID  string
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[pairKey]Footprint
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[pairKey]Footprint)}
}

func (r *MemoryRepo) Create(ctx context.Context, fp Footprint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{fp.DocumentID, fp.ContactID}
	if _, exists := r.data[key]; exists {
		return ErrDuplicate
	}
	r.data[key] = fp
	return nil
}

func (r *MemoryRepo) Exists(ctx context.Context, documentID, contactID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[pairKey{documentID, contactID}]
	return ok, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, documentID, contactID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, pairKey{documentID, contactID})
	return nil
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Footprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := []Footprint{}
	for key, fp := range r.data {
		if key.documentID == documentID {
			out = append(out, fp)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
