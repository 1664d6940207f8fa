package contacts

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for contacts.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create validates in and stores a new contact.
func (s *Service) Create(ctx context.Context, workspaceID string, in Input) (Contact, error) {
	in, err := normalize(in)
	if err != nil {
		return Contact{}, err
	}
	now := time.Now().UTC()
	c := Contact{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Email:       in.Email,
		Name:        in.Name,
		Phone:       in.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// FindOrCreate returns the first contact with the same email in the workspace,
// creating one when none exists. Existing contacts are returned unchanged.
func (s *Service) FindOrCreate(ctx context.Context, workspaceID string, in Input) (Contact, bool, error) {
	in, err := normalize(in)
	if err != nil {
		return Contact{}, false, err
	}
	existing, err := s.Repo.FindByEmail(ctx, workspaceID, in.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Contact{}, false, err
	}
	c, err := s.Create(ctx, workspaceID, in)
	return c, err == nil, err
}

// Get returns a contact of the workspace.
func (s *Service) Get(ctx context.Context, workspaceID, id string) (Contact, error) {
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	if c.WorkspaceID != workspaceID {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

// FindByEmail returns the first contact with email in the workspace.
func (s *Service) FindByEmail(ctx context.Context, workspaceID, email string) (Contact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Contact{}, ErrInvalidInput
	}
	return s.Repo.FindByEmail(ctx, workspaceID, email)
}

// List returns the contacts of a workspace.
func (s *Service) List(ctx context.Context, workspaceID string) ([]Contact, error) {
	return s.Repo.List(ctx, workspaceID)
}

func normalize(in Input) (Input, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email == "" {
		return in, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return in, ErrInvalidInput
	}
	if in.Name == "" {
		in.Name = in.Email
	}
	return in, nil
}
