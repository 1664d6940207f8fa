package fields

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentLister finds the documents instantiated from a template.
type DocumentLister interface {
	ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error)
}

// Service wraps Repo with the template-field cascade.
type Service struct {
	Repo      Repo
	Documents DocumentLister
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, docs DocumentLister) *Service {
	return &Service{Repo: repo, Documents: docs, now: func() time.Time { return time.Now().UTC() }}
}

// New builds an unsigned field for documentID.
func (s *Service) New(documentID, templateFieldID, contactID string) Field {
	now := s.now()
	return Field{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		TemplateFieldID: templateFieldID,
		ContactID:       contactID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MirrorTemplateField adds one unassigned field with a null value to every
// document of templateID.
func (s *Service) MirrorTemplateField(ctx context.Context, templateID, templateFieldID string) (int, error) {
	if strings.TrimSpace(templateID) == "" || strings.TrimSpace(templateFieldID) == "" {
		return 0, ErrInvalidInput
	}
	docIDs, err := s.Documents.ListIDsByTemplate(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("list template documents: %w", err)
	}
	list := make([]Field, 0, len(docIDs))
	for _, id := range docIDs {
		list = append(list, s.New(id, templateFieldID, ""))
	}
	if err := s.Repo.CreateMany(ctx, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// RemoveTemplateField deletes every document field mirrored from templateFieldID.
func (s *Service) RemoveTemplateField(ctx context.Context, templateFieldID string) (int, error) {
	if strings.TrimSpace(templateFieldID) == "" {
		return 0, ErrInvalidInput
	}
	return s.Repo.DeleteByTemplateField(ctx, templateFieldID)
}

// FindFields proxies Repo.FindFields.
func (s *Service) FindFields(ctx context.Context, documentID, contactID string) ([]Field, error) {
	return s.Repo.FindFields(ctx, documentID, contactID)
}

// Get proxies Repo.Get.
func (s *Service) Get(ctx context.Context, id string) (Field, error) {
	return s.Repo.Get(ctx, id)
}

// Patch applies p; an empty patch is rejected.
func (s *Service) Patch(ctx context.Context, id string, p Patch) (Field, error) {
	if p.Empty() {
		return Field{}, ErrInvalidInput
	}
	return s.Repo.PatchField(ctx, id, p)
}
