package fields

import (
	"context"
	"errors"
	"testing"
)

type stubDocs map[string][]string

func (s stubDocs) ListIDsByTemplate(ctx context.Context, templateID string) ([]string, error) {
	return s[templateID], nil
}

func TestMirrorAndRemoveTemplateField(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo, stubDocs{"tpl-1": {"doc-1", "doc-2"}})

	n, err := svc.MirrorTemplateField(ctx, "tpl-1", "tf-new")
	if err != nil {
		t.Fatalf("MirrorTemplateField: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 mirrored fields, got %d", n)
	}
	for _, doc := range []string{"doc-1", "doc-2"} {
		list, _ := repo.FindFields(ctx, doc, "")
		if len(list) != 1 {
			t.Fatalf("expected one field on %s, got %d", doc, len(list))
		}
		f := list[0]
		if f.TemplateFieldID != "tf-new" || f.ContactID != "" || f.Value != nil || f.IsSigned {
			t.Fatalf("unexpected mirrored field %+v", f)
		}
	}

	removed, err := svc.RemoveTemplateField(ctx, "tf-new")
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", removed, err)
	}
	left, _ := repo.FindFields(ctx, "doc-1", "")
	if len(left) != 0 {
		t.Fatalf("expected no fields left, got %d", len(left))
	}
}

func TestPatchRejectsEmptyPatch(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubDocs{})
	if _, err := svc.Patch(context.Background(), "f1", Patch{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
