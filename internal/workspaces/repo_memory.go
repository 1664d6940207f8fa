package workspaces

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Workspace
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Workspace)}
}

func (r *MemoryRepo) Create(ctx context.Context, ws Workspace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[ws.ID] = ws
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.data[id]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	ws.HasAPIKey = ws.APIKey != ""
	return ws, nil
}

// ListByOwner returns the owner's workspaces, oldest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Workspace{}
	for _, ws := range r.data {
		if ws.OwnerUserID == ownerUserID {
			ws.HasAPIKey = ws.APIKey != ""
			out = append(out, ws)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) SetAPIKey(ctx context.Context, id, apiKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	ws.APIKey = apiKey
	ws.UpdatedAt = time.Now().UTC()
	r.data[id] = ws
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
