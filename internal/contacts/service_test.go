package contacts

import (
	"context"
	"errors"
	"testing"
)

func TestFindOrCreateFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	first, created, err := svc.FindOrCreate(ctx, "ws-1", Input{Email: "Jane@Example.com", Name: "Jane"})
	if err != nil || !created {
		t.Fatalf("expected created contact, got %v (created=%v)", err, created)
	}
	if first.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %q", first.Email)
	}

	again, created, err := svc.FindOrCreate(ctx, "ws-1", Input{Email: "jane@example.com", Name: "Someone Else"})
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if created || again.ID != first.ID || again.Name != "Jane" {
		t.Fatalf("expected existing contact unchanged, got %+v (created=%v)", again, created)
	}

	other, created, _ := svc.FindOrCreate(ctx, "ws-2", Input{Email: "jane@example.com"})
	if !created || other.ID == first.ID {
		t.Fatalf("contacts must be scoped per workspace")
	}
	if other.Name != "jane@example.com" {
		t.Fatalf("expected name to default to email, got %q", other.Name)
	}
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	for _, email := range []string{"", "not-an-email"} {
		if _, err := svc.Create(context.Background(), "ws-1", Input{Email: email}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("email %q: expected ErrInvalidInput, got %v", email, err)
		}
	}
}

func TestGetHidesOtherWorkspaces(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	c, _ := svc.Create(ctx, "ws-1", Input{Email: "a@example.com"})
	if _, err := svc.Get(ctx, "ws-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
