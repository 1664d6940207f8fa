package integrations

import (
	"context"
	"errors"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestCreateValidatesAndDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	bad := []Input{
		{URL: ptr("ftp://example.com"), NotificationType: ptr(TypeDocumentCompleted)},
		{URL: ptr("https://example.com/hook"), NotificationType: ptr("document.deleted")},
		{URL: ptr("https://example.com/hook")},
	}
	for i, in := range bad {
		if _, err := svc.Create(ctx, "ws-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	out, err := svc.Create(ctx, "ws-1", Input{URL: ptr(" https://example.com/hook "), NotificationType: ptr(TypeDocumentUpdated)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !out.IsEnabled || out.URL != "https://example.com/hook" || out.Name == "" {
		t.Fatalf("unexpected defaults %+v", out)
	}
}

func TestUpdateAndDeleteScopedToWorkspace(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	out, _ := svc.Create(ctx, "ws-1", Input{URL: ptr("http://example.com"), NotificationType: ptr(TypeDocumentCompleted)})

	if _, err := svc.Update(ctx, "ws-2", out.ID, Input{IsEnabled: ptr(false)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	updated, err := svc.Update(ctx, "ws-1", out.ID, Input{IsEnabled: ptr(false)})
	if err != nil || updated.IsEnabled {
		t.Fatalf("expected disabled integration, got %+v (%v)", updated, err)
	}
	enabled, _ := svc.Repo.ListEnabled(ctx, "ws-1", TypeDocumentCompleted)
	if len(enabled) != 0 {
		t.Fatalf("disabled integration must not be listed as enabled")
	}
	if err := svc.Delete(ctx, "ws-1", out.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
