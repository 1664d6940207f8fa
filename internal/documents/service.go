package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kingsign-backend/internal/contacts"
	"kingsign-backend/internal/fields"
	"kingsign-backend/internal/templates"
)

// TemplateSource resolves a workspace template with its fields.
type TemplateSource interface {
	Get(ctx context.Context, workspaceID, id string) (templates.Template, error)
}

// ContactResolver finds or creates signers.
type ContactResolver interface {
	FindOrCreate(ctx context.Context, workspaceID string, in contacts.Input) (contacts.Contact, bool, error)
	Get(ctx context.Context, workspaceID, id string) (contacts.Contact, error)
	FindByEmail(ctx context.Context, workspaceID, email string) (contacts.Contact, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo      Repo
	Fields    *fields.Service
	Templates TemplateSource
	Contacts  ContactResolver
}

// NewService constructs a Service.
func NewService(repo Repo, fieldSvc *fields.Service, tpl TemplateSource, contactSvc ContactResolver) *Service {
	return &Service{Repo: repo, Fields: fieldSvc, Templates: tpl, Contacts: contactSvc}
}

// Assignment binds one template field to a signer, by contact id or by details.
type Assignment struct {
	FieldID   string          `json:"fieldId"`
	ContactID string          `json:"contactId"`
	Contact   *contacts.Input `json:"contact"`
}

// CreateInput is the body of document create.
type CreateInput struct {
	TemplateID  string       `json:"templateId"`
	Title       string       `json:"title"`
	Note        string       `json:"note"`
	Description string       `json:"description"`
	Fields      []Assignment `json:"fields"`
}

// Create instantiates a pending document from a template, creating one field
// per assignment.
func (s *Service) Create(ctx context.Context, workspaceID string, in CreateInput) (WithFields, error) {
	in.TemplateID = strings.TrimSpace(in.TemplateID)
	in.Title = strings.TrimSpace(in.Title)
	if in.TemplateID == "" {
		return WithFields{}, fmt.Errorf("%w: templateId is required", ErrInvalidInput)
	}
	if len(in.Fields) == 0 {
		return WithFields{}, fmt.Errorf("%w: at least one field assignment is required", ErrInvalidInput)
	}
	tpl, err := s.Templates.Get(ctx, workspaceID, in.TemplateID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return WithFields{}, fmt.Errorf("%w: template %s not found", ErrInvalidInput, in.TemplateID)
		}
		return WithFields{}, err
	}
	if in.Title == "" {
		in.Title = tpl.Name
	}
	note := in.Note
	if note == "" {
		note = in.Description
	}

	seen := map[string]bool{}
	for _, a := range in.Fields {
		if !tpl.HasField(a.FieldID) {
			return WithFields{}, fmt.Errorf("%w: field %s is not part of template %s", ErrInvalidInput, a.FieldID, tpl.ID)
		}
		if seen[a.FieldID] {
			return WithFields{}, fmt.Errorf("%w: field %s assigned twice", ErrInvalidInput, a.FieldID)
		}
		seen[a.FieldID] = true
	}

	now := time.Now().UTC()
	doc := Document{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		TemplateID:  tpl.ID,
		FileID:      tpl.FileID,
		Title:       in.Title,
		Note:        note,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	list := make([]fields.Field, 0, len(in.Fields))
	for _, a := range in.Fields {
		contactID, err := s.resolveContact(ctx, workspaceID, a)
		if err != nil {
			return WithFields{}, err
		}
		list = append(list, s.Fields.New(doc.ID, a.FieldID, contactID))
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return WithFields{}, err
	}
	if err := s.Fields.Repo.CreateMany(ctx, list); err != nil {
		return WithFields{}, fmt.Errorf("create document fields: %w", err)
	}
	return WithFields{Document: doc, Fields: list}, nil
}

func (s *Service) resolveContact(ctx context.Context, workspaceID string, a Assignment) (string, error) {
	switch {
	case a.Contact != nil:
		c, _, err := s.Contacts.FindOrCreate(ctx, workspaceID, *a.Contact)
		if err != nil {
			if errors.Is(err, contacts.ErrInvalidInput) {
				return "", fmt.Errorf("%w: field %s has an invalid contact", ErrInvalidInput, a.FieldID)
			}
			return "", err
		}
		return c.ID, nil
	case strings.TrimSpace(a.ContactID) != "":
		c, err := s.Contacts.Get(ctx, workspaceID, a.ContactID)
		if err != nil {
			if errors.Is(err, contacts.ErrNotFound) {
				return "", fmt.Errorf("%w: contact %s not found", ErrInvalidInput, a.ContactID)
			}
			return "", err
		}
		return c.ID, nil
	default:
		return "", nil
	}
}

// Get returns a document regardless of workspace.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.Get(ctx, id)
}

// GetInWorkspace returns a document only when it belongs to workspaceID.
func (s *Service) GetInWorkspace(ctx context.Context, workspaceID, id string) (Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.WorkspaceID != workspaceID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Assemble loads the current fields of doc.
func (s *Service) Assemble(ctx context.Context, doc Document) (WithFields, error) {
	list, err := s.Fields.FindFields(ctx, doc.ID, "")
	if err != nil {
		return WithFields{}, err
	}
	return WithFields{Document: doc, Fields: list}, nil
}

// GetWithFields returns a document and its fields.
func (s *Service) GetWithFields(ctx context.Context, id string) (WithFields, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return WithFields{}, err
	}
	return s.Assemble(ctx, doc)
}

// List returns the documents of a workspace with their fields.
func (s *Service) List(ctx context.Context, workspaceID string, includeArchived bool) ([]WithFields, error) {
	docs, err := s.Repo.List(ctx, ListFilter{WorkspaceID: workspaceID, IncludeArchived: includeArchived})
	if err != nil {
		return nil, err
	}
	return s.assembleAll(ctx, docs)
}

// ListByContactEmail returns the workspace documents that have a field
// assigned to the first contact with email.
func (s *Service) ListByContactEmail(ctx context.Context, workspaceID, email string) ([]WithFields, error) {
	c, err := s.Contacts.FindByEmail(ctx, workspaceID, email)
	if err != nil {
		if errors.Is(err, contacts.ErrNotFound) {
			return []WithFields{}, nil
		}
		if errors.Is(err, contacts.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
		}
		return nil, err
	}
	assigned, err := s.Fields.Repo.FindByContact(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assigned))
	seen := map[string]bool{}
	for _, f := range assigned {
		if !seen[f.DocumentID] {
			seen[f.DocumentID] = true
			ids = append(ids, f.DocumentID)
		}
	}
	if len(ids) == 0 {
		return []WithFields{}, nil
	}
	docs, err := s.Repo.List(ctx, ListFilter{WorkspaceID: workspaceID, IncludeArchived: true, IDs: ids})
	if err != nil {
		return nil, err
	}
	return s.assembleAll(ctx, docs)
}

// Update applies p to a workspace document. Status may only move forward.
func (s *Service) Update(ctx context.Context, workspaceID, id string, p Patch) (Document, error) {
	doc, err := s.GetInWorkspace(ctx, workspaceID, id)
	if err != nil {
		return Document{}, err
	}
	return s.apply(ctx, doc, p)
}

// UpdateContent changes only the title and note of a document.
func (s *Service) UpdateContent(ctx context.Context, id string, title, note *string) (Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	return s.apply(ctx, doc, Patch{Title: title, Note: note})
}

// MarkSigned moves a pending document to signed. The bool is true only for
// the call that performed the transition, so concurrent completions agree on
// a single winner.
func (s *Service) MarkSigned(ctx context.Context, id string) (Document, bool, error) {
	return s.Repo.SetStatusIf(ctx, id, StatusPending, StatusSigned)
}

func (s *Service) apply(ctx context.Context, doc Document, p Patch) (Document, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Document{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		p.Title = &title
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return Document{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *p.Status)
		}
		if !doc.Status.Allows(*p.Status) {
			return Document{}, ErrStatusRegression
		}
	}
	if p.Title == nil && p.Note == nil && p.Status == nil && p.Archived == nil {
		return doc, nil
	}
	return s.Repo.Patch(ctx, doc.ID, p)
}

func (s *Service) assembleAll(ctx context.Context, docs []Document) ([]WithFields, error) {
	out := make([]WithFields, 0, len(docs))
	for _, doc := range docs {
		wf, err := s.Assemble(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}
