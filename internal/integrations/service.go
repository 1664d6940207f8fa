package integrations

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var httpURL = regexp.MustCompile(`^https?://`)

// Service contains business logic for notification integrations.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create validates in and stores a new integration. IsEnabled defaults to true.
func (s *Service) Create(ctx context.Context, workspaceID string, in Input) (Integration, error) {
	if in.URL == nil || in.NotificationType == nil {
		return Integration{}, fmt.Errorf("%w: url and notificationType are required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	out := Integration{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		IsEnabled:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := apply(&out, in); err != nil {
		return Integration{}, err
	}
	if err := s.Repo.Create(ctx, out); err != nil {
		return Integration{}, err
	}
	return out, nil
}

// Get returns an integration of the workspace.
func (s *Service) Get(ctx context.Context, workspaceID, id string) (Integration, error) {
	in, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Integration{}, err
	}
	if in.WorkspaceID != workspaceID {
		return Integration{}, ErrNotFound
	}
	return in, nil
}

// List returns the integrations of a workspace.
func (s *Service) List(ctx context.Context, workspaceID string) ([]Integration, error) {
	return s.Repo.List(ctx, workspaceID)
}

// Update applies the non-nil members of in.
func (s *Service) Update(ctx context.Context, workspaceID, id string, in Input) (Integration, error) {
	cur, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return Integration{}, err
	}
	if err := apply(&cur, in); err != nil {
		return Integration{}, err
	}
	cur.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, cur); err != nil {
		return Integration{}, err
	}
	return cur, nil
}

// Delete removes an integration of the workspace.
func (s *Service) Delete(ctx context.Context, workspaceID, id string) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func apply(dst *Integration, in Input) error {
	if in.URL != nil {
		raw := strings.TrimSpace(*in.URL)
		if !httpURL.MatchString(raw) {
			return fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidInput)
		}
		if u, err := url.Parse(raw); err != nil || u.Host == "" {
			return fmt.Errorf("%w: url is malformed", ErrInvalidInput)
		}
		dst.URL = raw
	}
	if in.NotificationType != nil {
		t := strings.TrimSpace(*in.NotificationType)
		if !ValidType(t) {
			return fmt.Errorf("%w: notificationType must be %s or %s", ErrInvalidInput, TypeDocumentCompleted, TypeDocumentUpdated)
		}
		dst.NotificationType = t
	}
	if in.Name != nil {
		dst.Name = strings.TrimSpace(*in.Name)
	}
	if dst.Name == "" {
		dst.Name = dst.NotificationType + " webhook"
	}
	if in.IsEnabled != nil {
		dst.IsEnabled = *in.IsEnabled
	}
	return nil
}
