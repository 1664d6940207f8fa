package contacts

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	data  map[string]Contact
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Contact)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.data[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Contact, error) {
	if err := ctx.Err(); err != nil {
		return Contact{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) FindByEmail(ctx context.Context, workspaceID, email string) (Contact, error) {
	if err := ctx.Err(); err != nil {
		return Contact{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		c := r.data[id]
		if c.WorkspaceID == workspaceID && strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return Contact{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context, workspaceID string) ([]Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Contact{}
	for _, id := range r.order {
		if c := r.data[id]; c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
