package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kingsign-backend/internal/files"
	"kingsign-backend/internal/shared/telemetry"
)

// FieldCascade keeps document fields in step with template fields.
type FieldCascade interface {
	MirrorTemplateField(ctx context.Context, templateID, templateFieldID string) (int, error)
	RemoveTemplateField(ctx context.Context, templateFieldID string) (int, error)
}

// FileLookup resolves a workspace file.
type FileLookup interface {
	Get(ctx context.Context, workspaceID, id string) (files.File, error)
}

// DocumentLister finds the documents created from a template.
type DocumentLister interface {
	ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error)
}

// Service contains business logic for templates.
type Service struct {
	Repo      Repo
	Files     FileLookup
	Cascade   FieldCascade
	Documents DocumentLister
}

// NewService constructs a Service.
func NewService(repo Repo, files FileLookup, cascade FieldCascade, docs DocumentLister) *Service {
	return &Service{Repo: repo, Files: files, Cascade: cascade, Documents: docs}
}

// TemplateInput is the body of template create and update.
type TemplateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	FileID      *string `json:"fileId"`
}

// FieldInput is the body of template field create.
type FieldInput struct {
	FieldType   string          `json:"fieldType"`
	FieldName   string          `json:"fieldName"`
	Placeholder string          `json:"placeholder"`
	X           float64         `json:"xPosition"`
	Y           float64         `json:"yPosition"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Page        int             `json:"page"`
	Required    *bool           `json:"required"`
	Metadata    json.RawMessage `json:"metadata"`
}

// Create stores a template that references a PDF of the same workspace.
func (s *Service) Create(ctx context.Context, workspaceID string, in TemplateInput) (Template, error) {
	name := strings.TrimSpace(deref(in.Name))
	fileID := strings.TrimSpace(deref(in.FileID))
	if name == "" || fileID == "" {
		return Template{}, fmt.Errorf("%w: name and fileId are required", ErrInvalidInput)
	}
	if err := s.checkFile(ctx, workspaceID, fileID); err != nil {
		return Template{}, err
	}

	now := time.Now().UTC()
	t := Template{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		FileID:      fileID,
		Name:        name,
		Description: strings.TrimSpace(deref(in.Description)),
		Fields:      []Field{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Get returns a template of the workspace with its fields.
func (s *Service) Get(ctx context.Context, workspaceID, id string) (Template, error) {
	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if t.WorkspaceID != workspaceID {
		return Template{}, ErrNotFound
	}
	return s.withFields(ctx, t)
}

// List returns the templates of a workspace with their fields.
func (s *Service) List(ctx context.Context, workspaceID string) ([]Template, error) {
	list, err := s.Repo.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i], err = s.withFields(ctx, list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Update applies the non-nil members of in.
func (s *Service) Update(ctx context.Context, workspaceID, id string, in TemplateInput) (Template, error) {
	t, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return Template{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Template{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		t.Name = name
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.FileID != nil {
		fileID := strings.TrimSpace(*in.FileID)
		if err := s.checkFile(ctx, workspaceID, fileID); err != nil {
			return Template{}, err
		}
		t.FileID = fileID
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Delete removes a template that no document was created from.
func (s *Service) Delete(ctx context.Context, workspaceID, id string) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	ids, err := s.Documents.ListIDsByTemplate(ctx, id)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return ErrInUse
	}
	return s.Repo.Delete(ctx, id)
}

// AddField creates a template field and mirrors it into every document of the template.
func (s *Service) AddField(ctx context.Context, workspaceID, templateID string, in FieldInput) (Field, error) {
	if _, err := s.Get(ctx, workspaceID, templateID); err != nil {
		return Field{}, err
	}
	in.FieldType = strings.ToLower(strings.TrimSpace(in.FieldType))
	if !ValidFieldType(in.FieldType) {
		return Field{}, fmt.Errorf("%w: unsupported fieldType %q", ErrInvalidInput, in.FieldType)
	}
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Width < 0 || in.Height < 0 {
		return Field{}, fmt.Errorf("%w: width and height must not be negative", ErrInvalidInput)
	}
	if len(in.Metadata) > 0 && !json.Valid(in.Metadata) {
		return Field{}, fmt.Errorf("%w: metadata must be JSON", ErrInvalidInput)
	}

	now := time.Now().UTC()
	f := Field{
		ID:          uuid.NewString(),
		TemplateID:  templateID,
		FieldType:   in.FieldType,
		FieldName:   strings.TrimSpace(in.FieldName),
		Placeholder: strings.TrimSpace(in.Placeholder),
		X:           in.X,
		Y:           in.Y,
		Width:       in.Width,
		Height:      in.Height,
		Page:        in.Page,
		Required:    in.Required == nil || *in.Required,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.FieldName == "" {
		f.FieldName = f.FieldType
	}
	if err := s.Repo.CreateField(ctx, f); err != nil {
		return Field{}, err
	}

	mirrored, err := s.Cascade.MirrorTemplateField(ctx, templateID, f.ID)
	if err != nil {
		telemetry.Error("templates.mirror_failed", map[string]any{
			"template_id":       templateID,
			"template_field_id": f.ID,
			"error":             err,
		})
		if delErr := s.Repo.DeleteField(ctx, f.ID); delErr != nil && !errors.Is(delErr, ErrFieldNotFound) {
			telemetry.Error("templates.field_rollback_failed", map[string]any{
				"template_field_id": f.ID,
				"error":             delErr,
			})
		}
		return Field{}, err
	}
	telemetry.Info("templates.field_added", map[string]any{
		"template_id":       templateID,
		"template_field_id": f.ID,
		"mirrored":          mirrored,
	})
	return f, nil
}

// RemoveField deletes a template field and the document fields mirrored from it.
func (s *Service) RemoveField(ctx context.Context, workspaceID, fieldID string) error {
	f, err := s.Repo.GetField(ctx, fieldID)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, workspaceID, f.TemplateID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrFieldNotFound
		}
		return err
	}
	removed, err := s.Cascade.RemoveTemplateField(ctx, fieldID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteField(ctx, fieldID); err != nil {
		return err
	}
	telemetry.Info("templates.field_removed", map[string]any{
		"template_id":       f.TemplateID,
		"template_field_id": fieldID,
		"removed":           removed,
	})
	return nil
}

func (s *Service) withFields(ctx context.Context, t Template) (Template, error) {
	list, err := s.Repo.ListFields(ctx, t.ID)
	if err != nil {
		return Template{}, err
	}
	t.Fields = list
	return t, nil
}

func (s *Service) checkFile(ctx context.Context, workspaceID, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: fileId is required", ErrInvalidInput)
	}
	if _, err := s.Files.Get(ctx, workspaceID, fileID); err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return fmt.Errorf("%w: file %s not found", ErrInvalidInput, fileID)
		}
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
