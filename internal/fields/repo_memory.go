package fields

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	data  map[string]Field
	now   func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Field),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, f Field) error {
	return r.CreateMany(ctx, []Field{f})
}

func (r *MemoryRepo) CreateMany(ctx context.Context, list []Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range list {
		if f.ID == "" || f.DocumentID == "" {
			return ErrInvalidInput
		}
	}
	for _, f := range list {
		if _, exists := r.data[f.ID]; !exists {
			r.order = append(r.order, f.ID)
		}
		r.data[f.ID] = cloneField(f)
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Field, error) {
	if err := ctx.Err(); err != nil {
		return Field{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.data[id]
	if !ok {
		return Field{}, ErrNotFound
	}
	return cloneField(f), nil
}

func (r *MemoryRepo) FindFields(ctx context.Context, documentID, contactID string) ([]Field, error) {
	return r.filter(ctx, func(f Field) bool {
		return f.DocumentID == documentID && (contactID == "" || f.ContactID == contactID)
	})
}

func (r *MemoryRepo) FindByContact(ctx context.Context, contactID string) ([]Field, error) {
	return r.filter(ctx, func(f Field) bool { return f.ContactID == contactID })
}

func (r *MemoryRepo) PatchField(ctx context.Context, id string, p Patch) (Field, error) {
	if err := ctx.Err(); err != nil {
		return Field{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.data[id]
	if !ok {
		return Field{}, ErrNotFound
	}
	if p.Value != nil {
		f.Value = append(json.RawMessage(nil), (*p.Value)...)
	}
	if p.IsSigned != nil {
		f.IsSigned = *p.IsSigned
	}
	if p.ContactID != nil {
		f.ContactID = *p.ContactID
	}
	f.UpdatedAt = r.now()
	r.data[id] = f
	return cloneField(f), nil
}

func (r *MemoryRepo) DeleteByTemplateField(ctx context.Context, templateFieldID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	removed := 0
	for _, id := range r.order {
		if r.data[id].TemplateFieldID == templateFieldID {
			delete(r.data, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed, nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Field) bool) ([]Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Field{}
	for _, id := range r.order {
		if f := r.data[id]; keep(f) {
			out = append(out, cloneField(f))
		}
	}
	return out, nil
}

func cloneField(f Field) Field {
	if f.Value != nil {
		f.Value = append(json.RawMessage(nil), f.Value...)
	}
	return f
}

var _ Repo = (*MemoryRepo)(nil)
