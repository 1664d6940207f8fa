package integrations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Integration
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Integration)}
}

func (r *MemoryRepo) Create(ctx context.Context, in Integration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[in.ID] = in
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Integration, error) {
	if err := ctx.Err(); err != nil {
		return Integration{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.data[id]
	if !ok {
		return Integration{}, ErrNotFound
	}
	return in, nil
}

func (r *MemoryRepo) List(ctx context.Context, workspaceID string) ([]Integration, error) {
	return r.filter(ctx, func(in Integration) bool { return in.WorkspaceID == workspaceID })
}

func (r *MemoryRepo) ListEnabled(ctx context.Context, workspaceID, notificationType string) ([]Integration, error) {
	return r.filter(ctx, func(in Integration) bool {
		return in.WorkspaceID == workspaceID && in.NotificationType == notificationType && in.IsEnabled
	})
}

func (r *MemoryRepo) Update(ctx context.Context, in Integration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[in.ID]; !ok {
		return ErrNotFound
	}
	r.data[in.ID] = in
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Integration) bool) ([]Integration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Integration{}
	for _, in := range r.data {
		if keep(in) {
			out = append(out, in)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
