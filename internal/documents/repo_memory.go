package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns matching documents, newest first.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids map[string]bool
	if len(filter.IDs) > 0 {
		ids = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	r.mu.RLock()
	out := []Document{}
	for _, doc := range r.data {
		if filter.WorkspaceID != "" && doc.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if doc.Archived && !filter.IncludeArchived {
			continue
		}
		if ids != nil && !ids[doc.ID] {
			continue
		}
		out = append(out, doc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for id, doc := range r.data {
		if doc.TemplateID == templateID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id string, p Patch) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Note != nil {
		doc.Note = *p.Note
	}
	if p.Status != nil {
		doc.Status = *p.Status
	}
	if p.Archived != nil {
		doc.Archived = *p.Archived
	}
	doc.UpdatedAt = time.Now().UTC()
	r.data[id] = doc
	return doc, nil
}

func (r *MemoryRepo) SetStatusIf(ctx context.Context, id string, from, next Status) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, false, ErrNotFound
	}
	if doc.Status != from {
		return doc, false, nil
	}
	doc.Status = next
	doc.UpdatedAt = time.Now().UTC()
	r.data[id] = doc
	return doc, true, nil
}

var _ Repo = (*MemoryRepo)(nil)
