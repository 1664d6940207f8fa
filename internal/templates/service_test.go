package templates

import (
	"context"
	"errors"
	"testing"

	"kingsign-backend/internal/files"
)

type stubFiles map[string]files.File

func (s stubFiles) Get(ctx context.Context, workspaceID, id string) (files.File, error) {
	f, ok := s[id]
	if !ok || f.WorkspaceID != workspaceID {
		return files.File{}, files.ErrNotFound
	}
	return f, nil
}

type recordingCascade struct {
	mirrored []string
	removed  []string
	fail     error
}

func (r *recordingCascade) MirrorTemplateField(ctx context.Context, templateID, fieldID string) (int, error) {
	if r.fail != nil {
		return 0, r.fail
	}
	r.mirrored = append(r.mirrored, templateID+"/"+fieldID)
	return 1, nil
}

func (r *recordingCascade) RemoveTemplateField(ctx context.Context, fieldID string) (int, error) {
	r.removed = append(r.removed, fieldID)
	return 1, nil
}

type stubDocs map[string][]string

func (s stubDocs) ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error) {
	return s[templateID], nil
}

func strPtr(s string) *string { return &s }

func newTestService(cascade *recordingCascade, docs stubDocs) *Service {
	return NewService(NewMemoryRepo(), stubFiles{"file-1": {ID: "file-1", WorkspaceID: "ws-1"}}, cascade, docs)
}

func TestCreateRequiresWorkspaceFile(t *testing.T) {
	svc := newTestService(&recordingCascade{}, stubDocs{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "ws-2", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign file, got %v", err)
	}
	tpl, err := svc.Create(ctx, "ws-1", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tpl.Fields == nil {
		t.Fatalf("expected empty templateFields slice")
	}
}

func TestAddAndRemoveFieldCascades(t *testing.T) {
	cascade := &recordingCascade{}
	svc := newTestService(cascade, stubDocs{})
	ctx := context.Background()

	tpl, err := svc.Create(ctx, "ws-1", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f, err := svc.AddField(ctx, "ws-1", tpl.ID, FieldInput{FieldType: "Signature", Page: 0})
	if err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if f.FieldType != "signature" || f.Page != 1 || !f.Required || f.FieldName != "signature" {
		t.Fatalf("unexpected defaults %+v", f)
	}
	if len(cascade.mirrored) != 1 || cascade.mirrored[0] != tpl.ID+"/"+f.ID {
		t.Fatalf("expected mirror call, got %v", cascade.mirrored)
	}

	got, _ := svc.Get(ctx, "ws-1", tpl.ID)
	if !got.HasField(f.ID) {
		t.Fatalf("expected template to list the new field")
	}

	if err := svc.RemoveField(ctx, "ws-2", f.ID); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound from another workspace, got %v", err)
	}
	if err := svc.RemoveField(ctx, "ws-1", f.ID); err != nil {
		t.Fatalf("RemoveField: %v", err)
	}
	if len(cascade.removed) != 1 {
		t.Fatalf("expected cascade removal")
	}
}

func TestAddFieldRollsBackWhenMirrorFails(t *testing.T) {
	cascade := &recordingCascade{fail: errors.New("db down")}
	svc := newTestService(cascade, stubDocs{})
	ctx := context.Background()

	tpl, _ := svc.Create(ctx, "ws-1", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")})
	if _, err := svc.AddField(ctx, "ws-1", tpl.ID, FieldInput{FieldType: "text"}); err == nil {
		t.Fatalf("expected error")
	}
	got, _ := svc.Get(ctx, "ws-1", tpl.ID)
	if len(got.Fields) != 0 {
		t.Fatalf("expected field to be rolled back, got %d", len(got.Fields))
	}
}

func TestAddFieldRejectsUnknownType(t *testing.T) {
	svc := newTestService(&recordingCascade{}, stubDocs{})
	ctx := context.Background()
	tpl, _ := svc.Create(ctx, "ws-1", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")})
	if _, err := svc.AddField(ctx, "ws-1", tpl.ID, FieldInput{FieldType: "barcode"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteRejectsTemplateInUse(t *testing.T) {
	docs := stubDocs{}
	svc := newTestService(&recordingCascade{}, docs)
	ctx := context.Background()
	tpl, _ := svc.Create(ctx, "ws-1", TemplateInput{Name: strPtr("NDA"), FileID: strPtr("file-1")})
	docs[tpl.ID] = []string{"doc-1"}

	if err := svc.Delete(ctx, "ws-1", tpl.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	delete(docs, tpl.ID)
	if err := svc.Delete(ctx, "ws-1", tpl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "ws-1", tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
